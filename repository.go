/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entityquery

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	ddbexpr "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/suparena/entityquery/datastore"
	"github.com/suparena/entityquery/datastore/ddb"
	"github.com/suparena/entityquery/errors"
	"github.com/suparena/entityquery/logger"
	"github.com/suparena/entityquery/registry"
	"github.com/suparena/entityquery/storagemodels"
)

// Document is an entity without a Go type, decoded into plain values.
type Document = map[string]any

// Validator is implemented by entities with checks beyond their struct tags.
type Validator interface {
	Validate() error
}

// Repository is the entity-level API over one table. Every call is logged with a
// correlation id taken from the context or generated for the call.
type Repository[T any] struct {
	store   datastore.DataStore[T]
	binding registry.TableBinding
	valid   *validator.Validate
	logger  zerolog.Logger
}

// NewRepository creates a repository reading and writing through store.
func NewRepository[T any](store datastore.DataStore[T], binding registry.TableBinding, log zerolog.Logger) *Repository[T] {
	return &Repository[T]{
		store:   store,
		binding: binding,
		valid:   validator.New(validator.WithRequiredStructEnabled()),
		logger:  log.With().Str("table", binding.TableName).Logger(),
	}
}

// NewDynamoRepository creates a repository backed by a DynamoDB table.
func NewDynamoRepository[T any](client ddb.Client, binding registry.TableBinding, log zerolog.Logger) (*Repository[T], error) {
	store, err := ddb.NewDynamodbDataStore[T](client, binding, log)
	if err != nil {
		return nil, err
	}
	return NewRepository[T](store, binding, log), nil
}

// Binding returns the table binding of the repository.
func (r *Repository[T]) Binding() registry.TableBinding {
	return r.binding
}

// RegisterValidation adds a custom validation tag used by CreateEntity.
func (r *Repository[T]) RegisterValidation(tag string, fn validator.Func) error {
	return r.valid.RegisterValidation(tag, fn)
}

// CreateEntity validates entity and writes it, replacing any entity with the same id.
func (r *Repository[T]) CreateEntity(ctx context.Context, entity T) (T, error) {
	log := logger.ForCall(ctx, r.logger, "createEntity")
	log.Info().Msg("createEntity called")

	if err := r.validate(ctx, entity); err != nil {
		var zero T
		log.Warn().Err(err).Msg("entity rejected")
		return zero, err
	}

	created, err := r.store.Put(ctx, entity)
	if err != nil {
		log.Error().Err(err).Msg("createEntity failed")
		return created, err
	}
	return created, nil
}

// ReadEntity returns the entity keyed by id, or nil when there is none.
func (r *Repository[T]) ReadEntity(ctx context.Context, id string) (*T, error) {
	log := logger.ForCall(ctx, r.logger, "readEntity")
	log.Info().Str("id", id).Msg("readEntity called")

	entity, err := r.store.Get(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("readEntity failed")
		return nil, err
	}
	return entity, nil
}

// ReadAllEntities returns every entity of the table matching opts.
func (r *Repository[T]) ReadAllEntities(ctx context.Context, opts storagemodels.ReadOptions) ([]T, error) {
	log := logger.ForCall(ctx, r.logger, "readAllEntities")
	logOptions(log.Info(), opts).Msg("readAllEntities called")

	entities, err := r.store.ReadAll(ctx, opts)
	if err != nil {
		log.Error().Err(err).Msg("readAllEntities failed")
		return nil, err
	}
	log.Debug().Int("count", len(entities)).Msg("readAllEntities done")
	return entities, nil
}

// ReadEntitiesFromQuery returns every entity of a secondary index query matching opts.
func (r *Repository[T]) ReadEntitiesFromQuery(ctx context.Context, query storagemodels.QueryParameters, opts storagemodels.ReadOptions) ([]T, error) {
	log := logger.ForCall(ctx, r.logger, "readEntitiesFromQuery")
	logOptions(log.Info().Str("index", query.IndexName), opts).Msg("readEntitiesFromQuery called")

	entities, err := r.store.ReadFromQuery(ctx, query, opts)
	if err != nil {
		log.Error().Err(err).Msg("readEntitiesFromQuery failed")
		return nil, err
	}
	log.Debug().Int("count", len(entities)).Msg("readEntitiesFromQuery done")
	return entities, nil
}

// ReadByIndex returns every entity whose partition key on indexName equals key,
// e.g. all users with a given userName on UserNameIndex.
func (r *Repository[T]) ReadByIndex(ctx context.Context, indexName string, key any, opts storagemodels.ReadOptions) ([]T, error) {
	idx, err := r.binding.Index(indexName)
	if err != nil {
		return nil, errors.NewContractViolation("indexName", err.Error())
	}
	query, err := ddb.KeyCondition(indexName, ddbexpr.Key(idx.PartitionKey).Equal(ddbexpr.Value(key)))
	if err != nil {
		return nil, err
	}
	return r.ReadEntitiesFromQuery(ctx, query, opts)
}

// StreamEntities delivers the entities ReadAllEntities would return one by one.
func (r *Repository[T]) StreamEntities(ctx context.Context, opts storagemodels.ReadOptions, streamOpts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	log := logger.ForCall(ctx, r.logger, "streamEntities")
	logOptions(log.Info(), opts).Msg("streamEntities called")
	return r.store.Stream(ctx, opts, streamOpts...)
}

// DeleteEntity removes the entity keyed by id. Deleting an absent entity succeeds.
func (r *Repository[T]) DeleteEntity(ctx context.Context, id string) error {
	log := logger.ForCall(ctx, r.logger, "deleteEntity")
	log.Info().Str("id", id).Msg("deleteEntity called")

	if err := r.store.Delete(ctx, id); err != nil {
		log.Error().Err(err).Msg("deleteEntity failed")
		return err
	}
	return nil
}

func (r *Repository[T]) validate(ctx context.Context, entity T) error {
	v := reflect.ValueOf(entity)
	for v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct {
		if err := r.valid.StructCtx(ctx, entity); err != nil {
			var validationErrors validator.ValidationErrors
			if stderrors.As(err, &validationErrors) {
				msgs := make([]string, 0, len(validationErrors))
				for _, e := range validationErrors {
					msgs = append(msgs, fmt.Sprintf("field '%s' failed on rule '%s'", e.Field(), e.Tag()))
				}
				return errors.NewContractViolation("entity", strings.Join(msgs, "; "))
			}
			return errors.NewContractViolation("entity", err.Error())
		}
	}
	if c, ok := any(entity).(Validator); ok {
		if err := c.Validate(); err != nil {
			return errors.NewContractViolation("entity", err.Error())
		}
	}
	return nil
}

func logOptions(e *zerolog.Event, opts storagemodels.ReadOptions) *zerolog.Event {
	return e.
		Strs("filters", opts.Filters.Keys()).
		Strs("negation_filters", opts.NegationFilters.Keys()).
		Strs("fields", opts.Fields)
}
