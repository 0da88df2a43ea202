/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entityquery

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/suparena/entityquery/config"
	"github.com/suparena/entityquery/datastore/ddb"
)

// RegisterDocumentRepositories registers a Document repository for every table in
// cfg, under the entity name the table is configured with.
func RegisterDocumentRepositories(mts *MultiTypeStorage, cfg *config.Config, client ddb.Client, log zerolog.Logger) error {
	for name, tc := range cfg.Tables {
		repo, err := NewDynamoRepository[Document](client, tc.Binding(), log.With().Str("entity", name).Logger())
		if err != nil {
			return fmt.Errorf("failed to create repository for %q: %w", name, err)
		}
		if err := RegisterRepository(mts, name, repo); err != nil {
			return err
		}
	}
	return nil
}
