package main

import (
	"fmt"
	"os"

	"github.com/knights-analytics/mnist/datasets"
	"github.com/knights-analytics/mnist/options"
	"github.com/knights-analytics/mnist/util/fileutil"
)

// download the MNIST files used by the integration tests into ./data/data<split>.

func main() {
	if ok, err := fileutil.FileExists("./data"); err == nil {
		if !ok {
			err = os.MkdirAll("./data", os.ModePerm)
			if err != nil {
				panic(err)
			}
		}
	} else {
		panic(err)
	}

	provider, err := datasets.NewMNISTProvider(options.WithVerbose(true))
	if err != nil {
		panic(err)
	}
	for _, split := range datasets.Splits {
		imagesPath, labelsPath, fetchErr := provider.Fetch(split, split.ScratchDir("./data"))
		if fetchErr != nil {
			panic(fetchErr)
		}
		fmt.Printf("Downloaded %s split to %s and %s\n", split, imagesPath, labelsPath)
	}
}
