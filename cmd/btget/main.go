package main

import (
	"flag"
	"fmt"
	"os"

	"btget/config"

	"github.com/sirupsen/logrus"
)

var (
	configFile = flag.String("f", "", "the config file")
	format     = flag.String("format", "", "output format: text, json or yaml")
	strict     = flag.Bool("strict", false, "reject bencode that is not in canonical form")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: btget [flags] <command> [args]

Commands:
  show FILE...                 print the metadata of torrent files
  dump FILE                    print the raw bencode tree as JSON
  index PATH...                store the metadata of torrent files and directories
  list [-name s] [-limit n]    list stored torrents
  get INFOHASH                 print a stored torrent

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	c, err := config.Load(*configFile)
	if err != nil {
		logrus.Errorf("Failed to read config file. %v", err)
		os.Exit(1)
	}
	if *format != "" {
		c.Format = *format
	}
	if *strict {
		c.Strict = true
	}
	c.MustSetUp()

	err = run(c, flag.Arg(0), flag.Args()[1:])
	if err != nil {
		logrus.Errorf("%v", err)
		os.Exit(1)
	}
}
