/*
NAME
  vobsubinfo - prints the captions described by a VobSub .idx/.sub pair.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package vobsubinfo is a small diagnostic CLI that opens a .idx/.sub pair
// and prints, for each caption, its start/end time, display rectangle and
// forced flag. It exercises subpicture.Stream end to end without decoding
// any bitmap, since no RLE codec is wired in (spec.md §1: the RLE codec is
// an external collaborator this module never implements).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/vobsub/subpicture"
)

func main() {
	idxPath := flag.String("idx", "", "path to the .idx sidecar")
	subPath := flag.String("sub", "", "path to the .sub file")
	fixZeroAlpha := flag.Bool("fix-zero-alpha", false, "reuse the previous caption's alpha when a caption parses as fully transparent")
	verbosity := flag.Int("verbosity", int(logging.Info), "log level (see github.com/ausocean/utils/logging)")
	flag.Parse()

	if *idxPath == "" || *subPath == "" {
		log.Fatal("both -idx and -sub are required")
	}

	l := logging.New(int8(*verbosity), os.Stderr, true)

	stream, err := subpicture.OpenSubDvd(*idxPath, *subPath, *fixZeroAlpha, nil, l)
	if err != nil {
		l.Fatal("could not open vobsub pair", "err", err)
		return
	}
	defer stream.Close()

	n := stream.GetFrameCount()
	fmt.Printf("%d caption(s)\n", n)
	for i := 0; i < n; i++ {
		sp, err := stream.GetSubPicture(i)
		if err != nil {
			l.Warning("could not decode caption", "index", i, "err", err)
			continue
		}
		fmt.Printf("%4d: start=%d end=%d rect=(%d,%d)-(%d,%d) forced=%v\n",
			i, sp.StartPTS, sp.EndPTS,
			sp.ImageX, sp.ImageY, sp.ImageX+sp.ImageWidth, sp.ImageY+sp.ImageHeight,
			sp.Forced)
	}
	fmt.Printf("forced captions seen: %d\n", stream.NumForced())
}
