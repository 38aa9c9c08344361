package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/GoSim-25-26J-441/viz-backend/internal/ids"
)

const usage = `usage:
  vizctl encode <id>...
  vizctl decode <token>...
  vizctl schemas [name]
  vizctl validate <ListQuery|Summary|SummaryList|DetailedView> <file.json|->`

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}
	_ = godotenv.Load()

	var err error
	switch os.Args[1] {
	case "encode":
		err = runEncode(os.Stdout, os.Args[2:])
	case "decode":
		err = runDecode(os.Stdout, os.Args[2:])
	case "schemas":
		err = runSchemas(os.Stdout, os.Args[2:])
	case "validate":
		err = runValidate(os.Stdout, os.Stdin, os.Args[2:])
	default:
		log.Fatalf("unknown command: %s\n%s", os.Args[1], usage)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func codecFromEnv() (*ids.Codec, error) {
	return ids.New(os.Getenv("ID_SECRET"))
}

func runEncode(w io.Writer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: encode <id>...")
	}
	codec, err := codecFromEnv()
	if err != nil {
		return err
	}
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", arg, err)
		}
		fmt.Fprintf(w, "%d\t%s\n", id, codec.Encode(id))
	}
	return nil
}

func runDecode(w io.Writer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: decode <token>...")
	}
	codec, err := codecFromEnv()
	if err != nil {
		return err
	}
	for _, arg := range args {
		id, err := codec.Decode(arg)
		if err != nil {
			return fmt.Errorf("%s: %w", arg, err)
		}
		fmt.Fprintf(w, "%s\t%d\n", arg, id)
	}
	return nil
}
