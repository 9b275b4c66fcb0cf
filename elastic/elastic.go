package elastic

import (
	"log"
	"os"

	"github.com/elastic/go-elasticsearch/v8"
)

// Client wraps the go-elasticsearch client the quote-event consumer indexes
// into.
type Client struct {
	ES *elasticsearch.Client
}

type Factory struct{}

func NewElasticFactory() *Factory {
	return &Factory{}
}

// DefaultConfig points at ELASTICSEARCH_URL, falling back to localhost.
func DefaultConfig() elasticsearch.Config {
	addr := os.Getenv("ELASTICSEARCH_URL")
	if addr == "" {
		addr = "http://localhost:9200"
	}
	return elasticsearch.Config{Addresses: []string{addr}}
}

func (f *Factory) NewClient(cfg elasticsearch.Config) (*Client, error) {
	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		log.Printf("Error creating the elasticsearch client: %s", err)
		return nil, err
	}

	return &Client{ES: es}, nil
}
