/*
 * Copyright (c) 2026, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package setup

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/wso2/identity-contact-resolution-service/internal/system/config"
)

const (
	testDBName     = "testdb"
	testDBUser     = "testuser"
	testDBPassword = "testpass"
)

// TestDatabase contains the running container, a direct connection and the
// datasource configuration the runtime should be overridden with.
type TestDatabase struct {
	Container  *postgres.PostgresContainer
	DB         *sql.DB
	DataSource config.DataSourceConfig
}

// SetupTestDB spins up a Postgres container and applies the schema.
func SetupTestDB(ctx context.Context) (*TestDatabase, error) {
	container, err := postgres.RunContainer(ctx,
		postgres.WithDatabase(testDBName),
		postgres.WithUsername(testDBUser),
		postgres.WithPassword(testDBPassword),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	schemaBytes, err := os.ReadFile(SchemaPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	if _, err := db.Exec(string(schemaBytes)); err != nil {
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, err
	}
	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return nil, err
	}
	port, _ := strconv.Atoi(mappedPort.Port())

	log.Printf("Postgres test container started at %s:%d", host, port)

	return &TestDatabase{
		Container: container,
		DB:        db,
		DataSource: config.DataSourceConfig{
			Hostname: host,
			Port:     port,
			Name:     testDBName,
			Username: testDBUser,
			Password: testDBPassword,
			SSLMode:  "disable",
		},
	}, nil
}

// SchemaPath locates dbscripts/schema.sql by walking up from the working
// directory to the module root.
func SchemaPath() string {
	dir, err := os.Getwd()
	if err != nil {
		return filepath.Join("dbscripts", "schema.sql")
	}
	for {
		candidate := filepath.Join(dir, "dbscripts", "schema.sql")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return filepath.Join("dbscripts", "schema.sql")
		}
		dir = parent
	}
}
