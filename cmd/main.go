package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/knights-analytics/mnist"
	"github.com/knights-analytics/mnist/datasets"
	"github.com/knights-analytics/mnist/options"
	"github.com/knights-analytics/mnist/util/fileutil"
	"github.com/knights-analytics/mnist/util/imageutil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var splitName string
var scratchRoot string
var sourceURL string
var outputPath string
var batchSize int
var verbose bool
var exportFormat string
var imageSize int

// commonFlags returns fresh flag instances, so that each command owns its own.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "split",
			Usage:       "Dataset split: train or test",
			Aliases:     []string{"s"},
			Destination: &splitName,
			Value:       string(datasets.SplitTrain),
		},
		&cli.StringFlag{
			Name:        "scratch",
			Usage:       "Root of the per-split scratch directories. Falls back to the system temp dir if not specified",
			Destination: &scratchRoot,
			Value:       os.TempDir(),
		},
		&cli.StringFlag{
			Name:        "source",
			Usage:       "Location to download the gzipped IDX files from (local path, https:// or s3://)",
			Destination: &sourceURL,
			Value:       options.DefaultSourceURL,
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Usage:       "Print progress",
			Aliases:     []string{"v"},
			Destination: &verbose,
		},
	}
}

var fetchCommand = &cli.Command{
	Name:        "fetch",
	Usage:       "Download and decompress the raw files of a split into its scratch directory",
	Description: `Fetch stages the IDX files of a split so later loads do not need network access.`,
	Flags:       commonFlags(),
	Action: func(ctx *cli.Context) error {
		split, opts, err := parseFlags()
		if err != nil {
			return err
		}
		provider, err := datasets.NewMNISTProvider(opts...)
		if err != nil {
			return err
		}
		imagesPath, labelsPath, err := provider.Fetch(split, split.ScratchDir(scratchRoot))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(ctx.App.Writer, "%s\n%s\n", imagesPath, labelsPath)
		return err
	},
}

var summaryCommand = &cli.Command{
	Name:  "summary",
	Usage: "Materialize a split and print a JSON summary of it",
	Description: `Summary prints the split name, the number of samples, the sample shape and the number of samples per label.
				The JSON is indented when writing to a terminal.`,
	Flags: append([]cli.Flag{
		&cli.IntFlag{
			Name:        "batchSize",
			Usage:       "Number of samples to request per batch",
			Aliases:     []string{"b"},
			Destination: &batchSize,
			Value:       options.DefaultBatchSize,
		},
	}, commonFlags()...),
	Action: func(ctx *cli.Context) error {
		dataset, err := load()
		if err != nil {
			return err
		}
		out := summary{
			Split:       dataset.Split.String(),
			Samples:     dataset.Len(),
			SampleShape: dataset.SampleShape,
			LabelCounts: dataset.LabelCounts(),
		}
		var outputBytes []byte
		if isTerminal(ctx.App.Writer) {
			outputBytes, err = json.MarshalIndent(out, "", "  ")
		} else {
			outputBytes, err = json.Marshal(out)
		}
		if err != nil {
			return err
		}
		_, err = ctx.App.Writer.Write(append(outputBytes, '\n'))
		return err
	},
}

var exportCommand = &cli.Command{
	Name:  "export",
	Usage: "Materialize a split and write it as .jsonl, one sample per line, or as one png per sample",
	ArgsUsage: `
				--output: path of the .jsonl file to write (local path or s3://). If omitted, the output will be sent to stdout.
				With --format png, the folder where to write <index>_<label>.png files; required.
				--imageSize: with --format png, scale the 28x28 digits to this size. Defaults to the native size.
				`,
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Usage:       "Path to output",
			Aliases:     []string{"o"},
			Destination: &outputPath,
		},
		&cli.StringFlag{
			Name:        "format",
			Usage:       "Output format: jsonl or png",
			Aliases:     []string{"f"},
			Destination: &exportFormat,
			Value:       "jsonl",
		},
		&cli.IntFlag{
			Name:        "imageSize",
			Usage:       "Size of the exported png images",
			Destination: &imageSize,
		},
		&cli.IntFlag{
			Name:        "batchSize",
			Usage:       "Number of samples to request per batch",
			Aliases:     []string{"b"},
			Destination: &batchSize,
			Value:       options.DefaultBatchSize,
		},
	}, commonFlags()...),
	Action: func(ctx *cli.Context) (err error) {
		if exportFormat != "jsonl" && exportFormat != "png" {
			return fmt.Errorf("export format %s not implemented", exportFormat)
		}
		if exportFormat == "png" && outputPath == "" {
			return fmt.Errorf("--output is required for png export")
		}
		dataset, err := load()
		if err != nil {
			return err
		}
		if exportFormat == "png" {
			return writeImages(outputPath, dataset, imageSize)
		}
		var writer io.Writer = ctx.App.Writer
		if outputPath != "" {
			fileWriter, writerErr := fileutil.NewFileWriter(outputPath, "application/jsonl")
			if writerErr != nil {
				return writerErr
			}
			defer func() {
				err = errors.Join(err, fileWriter.Close())
			}()
			writer = fileWriter
		}
		return writeSamples(writer, dataset)
	},
}

type summary struct {
	Split       string        `json:"split"`
	Samples     int           `json:"samples"`
	SampleShape []int         `json:"sampleShape"`
	LabelCounts map[int32]int `json:"labelCounts"`
}

type sample struct {
	Label    int32     `json:"label"`
	Features []float32 `json:"features"`
}

func parseFlags() (datasets.Split, []options.WithOption, error) {
	split, err := datasets.ParseSplit(splitName)
	if err != nil {
		return "", nil, err
	}
	opts := []options.WithOption{
		options.WithScratchRoot(scratchRoot),
		options.WithSourceURL(sourceURL),
		options.WithVerbose(verbose),
	}
	if batchSize != 0 {
		opts = append(opts, options.WithBatchSize(batchSize))
	}
	return split, opts, nil
}

func load() (*datasets.Dataset, error) {
	split, opts, err := parseFlags()
	if err != nil {
		return nil, err
	}
	loader, err := mnist.NewMNISTLoader(opts...)
	if err != nil {
		return nil, err
	}
	return loader.Load(split)
}

func writeSamples(writer io.Writer, dataset *datasets.Dataset) error {
	stream := json.BorrowStream(writer)
	defer json.ReturnStream(stream)
	for i := range dataset.Len() {
		features, label := dataset.Sample(i)
		stream.WriteVal(sample{Label: label, Features: features})
		stream.WriteRaw("\n")
		if stream.Error != nil {
			return stream.Error
		}
		if stream.Buffered() > 64*1024 {
			if err := stream.Flush(); err != nil {
				return err
			}
		}
	}
	return stream.Flush()
}

func writeImages(dir string, dataset *datasets.Dataset, size int) error {
	if dataset.SampleSize() != datasets.ImageRows*datasets.ImageCols {
		return fmt.Errorf("samples of shape %v are not %dx%d images", dataset.SampleShape, datasets.ImageRows, datasets.ImageCols)
	}
	if err := fileutil.CreateDir(dir); err != nil {
		return err
	}
	var steps []imageutil.PreprocessStep
	if size > 0 {
		steps = append(steps, imageutil.ResizeStep(size))
	}
	for i := range dataset.Len() {
		pixels, label := dataset.Sample(i)
		gray, err := imageutil.GrayFromPixels(pixels, datasets.ImageCols, datasets.ImageRows)
		if err != nil {
			return err
		}
		var img image.Image = gray
		for _, step := range steps {
			if img, err = step.Apply(img); err != nil {
				return err
			}
		}
		if err = imageutil.WritePNG(fileutil.PathJoinSafe(dir, fmt.Sprintf("%05d_%d.png", i, label)), img); err != nil {
			return err
		}
	}
	return nil
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "mnist",
		Usage:    "Download and materialize the MNIST dataset",
		Commands: []*cli.Command{fetchCommand, summaryCommand, exportCommand},
	}
}

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		panic(err)
	}
}
