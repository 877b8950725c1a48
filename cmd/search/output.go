package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mypictures/photoindex/v1/photo"
)

const maxPathWidth = 60

func printHits(w io.Writer, query string, hits []photo.Hit) {
	if len(hits) == 0 {
		fmt.Fprintf(w, "No photos match %q.\n", query)
		return
	}

	fmt.Fprintf(w, "%d photos match %q:\n\n", len(hits), query)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tTAKEN\tCAMERA\tPATH\tGPS")
	for i, h := range hits {
		fmt.Fprintf(tw, "%d\t%.3f\t%s\t%s\t%s\t%s\n",
			i+1,
			h.Similarity,
			taken(h),
			camera(h),
			truncatePath(h.FilePath, maxPathWidth),
			gps(h),
		)
	}
	tw.Flush()
}

func taken(h photo.Hit) string {
	if h.DateTaken == nil {
		return "-"
	}
	return h.DateTaken.Format("2006-01-02")
}

func camera(h photo.Hit) string {
	if h.CameraModel == nil || *h.CameraModel == "" {
		return "-"
	}
	return *h.CameraModel
}

func gps(h photo.Hit) string {
	if h.GPSLatitude == nil || h.GPSLongitude == nil {
		return ""
	}
	return fmt.Sprintf("%.5f,%.5f", *h.GPSLatitude, *h.GPSLongitude)
}

// truncatePath keeps the end of p, which carries the file name.
func truncatePath(p string, width int) string {
	r := []rune(p)
	if len(r) <= width {
		return p
	}
	return "..." + string(r[len(r)-(width-3):])
}
