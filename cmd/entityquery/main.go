/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	ddbexpr "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/suparena/entityquery"
	"github.com/suparena/entityquery/config"
	"github.com/suparena/entityquery/datastore/ddb"
	"github.com/suparena/entityquery/expression"
	"github.com/suparena/entityquery/logger"
	"github.com/suparena/entityquery/server"
	"github.com/suparena/entityquery/storagemodels"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const usage = `usage: entityquery <command> [flags]

commands:
  explain   print the request a scan or query would send
  scan      read every entity matching the filters
  query     read the entities of one secondary index partition
  get       read one entity by id
  serve     run the read-only HTTP API
  version   print version information
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// options holds the flags shared by every command.
type options struct {
	configPath string
	entity     string
	filters    string
	negation   string
	fields     string
	fieldsSet  bool
	limit      string
	index      string
	key        string
	id         string
	addr       string
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("missing command")
	}
	command := args[0]

	if command == "version" || command == "-version" || command == "-v" {
		info := entityquery.GetVersionInfo()
		fmt.Fprintf(stdout, "EntityQuery version %s\n", info.Version)
		fmt.Fprintf(stdout, "Git commit: %s\n", info.GitCommit)
		fmt.Fprintf(stdout, "Build date: %s\n", info.BuildDate)
		fmt.Fprintf(stdout, "Go version: %s\n", info.GoVersion)
		return nil
	}

	var opts options
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", os.Getenv("ENTITYQUERY_CONFIG"), "path to the YAML configuration")
	fs.StringVar(&opts.entity, "entity", "", "entity name as configured under tables")
	fs.StringVar(&opts.filters, "filters", "", `filters as JSON, e.g. {"age":[{"operator":">","value":18}]}`)
	fs.StringVar(&opts.negation, "negation", "", "negation filters as JSON")
	fs.StringVar(&opts.fields, "fields", "", `comma separated attributes to return, -fields "" returns ids only`)
	fs.StringVar(&opts.limit, "limit", "", "page size requested from DynamoDB")
	fs.StringVar(&opts.index, "index", "", "secondary index name")
	fs.StringVar(&opts.key, "key", "", "partition key value of the index")
	fs.StringVar(&opts.id, "id", "", "entity id")
	fs.StringVar(&opts.addr, "addr", ":8080", "listen address of serve")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "fields" {
			opts.fieldsSet = true
		}
	})

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	log := logger.Configure(cfg.Logging).With().Str("command", command).Logger()

	switch command {
	case "explain":
		return explain(cfg, opts, stdout)
	case "scan", "query", "get":
		return read(ctx, cfg, opts, command, log, stdout)
	case "serve":
		return serve(ctx, cfg, opts, log)
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (o options) readOptions() (storagemodels.ReadOptions, error) {
	var ro storagemodels.ReadOptions
	if o.filters != "" {
		ro.Filters = storagemodels.NewFilters()
		if err := json.UnmarshalFromString(o.filters, ro.Filters); err != nil {
			return ro, fmt.Errorf("bad -filters: %w", err)
		}
	}
	if o.negation != "" {
		ro.NegationFilters = storagemodels.NewFilters()
		if err := json.UnmarshalFromString(o.negation, ro.NegationFilters); err != nil {
			return ro, fmt.Errorf("bad -negation: %w", err)
		}
	}
	if o.fieldsSet {
		ro.Fields = []string{}
		for _, field := range strings.Split(o.fields, ",") {
			if field = strings.TrimSpace(field); field != "" {
				ro.Fields = append(ro.Fields, field)
			}
		}
	}
	if o.limit != "" {
		n, err := strconv.ParseInt(o.limit, 10, 32)
		if err != nil || n <= 0 {
			return ro, fmt.Errorf("bad -limit %q", o.limit)
		}
		limit := int32(n)
		ro.Limit = &limit
	}
	return ro, nil
}

// describe assembles the request of a scan, or of a query when -index is set.
func describe(cfg *config.Config, opts options) (storagemodels.RequestDescriptor, error) {
	tc, err := cfg.Table(opts.entity)
	if err != nil {
		return storagemodels.RequestDescriptor{}, err
	}
	ro, err := opts.readOptions()
	if err != nil {
		return storagemodels.RequestDescriptor{}, err
	}
	if opts.index == "" {
		return expression.Assemble(tc.TableName, tc.IDAttribute, ro)
	}

	idx, err := tc.Binding().Index(opts.index)
	if err != nil {
		return storagemodels.RequestDescriptor{}, err
	}
	query, err := ddb.KeyCondition(opts.index, ddbexpr.Key(idx.PartitionKey).Equal(ddbexpr.Value(opts.key)))
	if err != nil {
		return storagemodels.RequestDescriptor{}, err
	}
	return expression.AssembleQuery(tc.TableName, tc.IDAttribute, query, ro)
}

// explained is the printable form of a request descriptor.
type explained struct {
	TableName                 string            `json:"TableName"`
	IndexName                 *string           `json:"IndexName,omitempty"`
	KeyConditionExpression    *string           `json:"KeyConditionExpression,omitempty"`
	FilterExpression          *string           `json:"FilterExpression,omitempty"`
	ProjectionExpression      *string           `json:"ProjectionExpression,omitempty"`
	ExpressionAttributeNames  map[string]string `json:"ExpressionAttributeNames,omitempty"`
	ExpressionAttributeValues map[string]any    `json:"ExpressionAttributeValues,omitempty"`
	Limit                     *int32            `json:"Limit,omitempty"`
}

func explain(cfg *config.Config, opts options, stdout io.Writer) error {
	desc, err := describe(cfg, opts)
	if err != nil {
		return err
	}

	out := explained{
		TableName:                desc.TableName,
		IndexName:                desc.IndexName,
		KeyConditionExpression:   desc.KeyConditionExpression,
		FilterExpression:         desc.FilterExpression,
		ProjectionExpression:     desc.ProjectionExpression,
		ExpressionAttributeNames: desc.ExpressionAttributeNames,
		Limit:                    desc.Limit,
	}
	if desc.ExpressionAttributeValues != nil {
		if err := attributevalue.UnmarshalMap(desc.ExpressionAttributeValues, &out.ExpressionAttributeValues); err != nil {
			return fmt.Errorf("failed to decode attribute values: %w", err)
		}
	}
	return writeJSON(stdout, out)
}

func read(ctx context.Context, cfg *config.Config, opts options, command string, log zerolog.Logger, stdout io.Writer) error {
	tc, err := cfg.Table(opts.entity)
	if err != nil {
		return err
	}
	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	repo, err := entityquery.NewDynamoRepository[entityquery.Document](client, tc.Binding(), log)
	if err != nil {
		return err
	}
	ro, err := opts.readOptions()
	if err != nil {
		return err
	}

	switch command {
	case "get":
		doc, err := repo.ReadEntity(ctx, opts.id)
		if err != nil {
			return err
		}
		if doc == nil {
			return fmt.Errorf("%s %q not found", opts.entity, opts.id)
		}
		return writeJSON(stdout, *doc)
	case "query":
		if opts.index == "" {
			return fmt.Errorf("query needs -index")
		}
		docs, err := repo.ReadByIndex(ctx, opts.index, opts.key, ro)
		if err != nil {
			return err
		}
		return writeJSON(stdout, docs)
	default:
		docs, err := repo.ReadAllEntities(ctx, ro)
		if err != nil {
			return err
		}
		return writeJSON(stdout, docs)
	}
}

func serve(ctx context.Context, cfg *config.Config, opts options, log zerolog.Logger) error {
	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}

	mts := entityquery.NewMultiTypeStorage()
	if err := entityquery.RegisterDocumentRepositories(mts, cfg, client, log); err != nil {
		return err
	}
	return server.New(mts, log).ListenAndServe(ctx, opts.addr)
}

func newClient(ctx context.Context, cfg *config.Config) (ddb.Client, error) {
	return ddb.NewDynamoDBClient(ctx, ddb.ClientConfig{
		Region:    cfg.AWSRegion,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Endpoint:  cfg.Endpoint,
	})
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
