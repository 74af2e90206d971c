package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/marmos91/funkostore/internal/protocol/wire"
	"github.com/marmos91/funkostore/pkg/client"
	"github.com/marmos91/funkostore/pkg/funko"
)

func main() {
	addr := flag.String("addr", "localhost:60300", "Server address (host:port)")
	operation := flag.String("op", "", "Operation: add, update, remove, list, read")
	user := flag.String("user", "", "Collection owner")
	timeout := flag.Duration("timeout", 10*time.Second, "Request timeout")

	id := flag.Int("id", 0, "Funko id")
	name := flag.String("name", "", "Funko name")
	description := flag.String("description", "", "Funko description")
	typ := flag.String("type", string(funko.TypePop), "Funko type")
	genre := flag.String("genre", string(funko.GenreMoviesTV), "Funko genre")
	franchise := flag.String("franchise", "", "Source franchise")
	number := flag.Int("number", 0, "Number within the franchise")
	exclusive := flag.Bool("exclusive", false, "Exclusive release")
	characteristics := flag.String("characteristics", "", "Special traits")
	marketValue := flag.Float64("value", 0, "Market value (must be > 0 for add/update)")
	flag.Parse()

	if *user == "" {
		log.Fatal("-user is required")
	}

	req := &wire.Request{Type: wire.RequestType(*operation), User: *user}

	switch req.Type {
	case wire.RequestAdd, wire.RequestUpdate:
		// Records that fail construction are rejected here and never
		// transmitted.
		f, err := funko.New(*id, *name, *description, funko.FunkoType(*typ),
			funko.FunkoGenre(*genre), *franchise, *number, *exclusive,
			*characteristics, *marketValue)
		if err != nil {
			log.Fatalf("Invalid funko: %v", err)
		}
		req.Funko = f
		if req.Type == wire.RequestUpdate {
			req.ID = id
		}
	case wire.RequestRemove, wire.RequestRead:
		req.ID = id
	case wire.RequestList:
	default:
		log.Fatalf("Unknown operation %q (want add, update, remove, list, read)", *operation)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := client.New(*addr).Do(ctx, req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}

	if !res.Success {
		fmt.Fprintf(os.Stderr, "Error: %s\n", res.Message)
		os.Exit(1)
	}

	fmt.Println(res.Message)
	for _, f := range res.Funkos {
		fmt.Printf("  #%d %s (%s / %s) franchise=%q number=%d exclusive=%t value=%.2f\n",
			f.ID, f.Name, f.Type, f.Genre, f.Franchise, f.Number, f.Exclusive, f.MarketValue)
	}
}
