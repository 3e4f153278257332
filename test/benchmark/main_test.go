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

package benchmark

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/wso2/identity-contact-resolution-service/internal/system/config"
	"github.com/wso2/identity-contact-resolution-service/internal/system/constants"
	"github.com/wso2/identity-contact-resolution-service/internal/system/log"
	"github.com/wso2/identity-contact-resolution-service/test/setup"
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	pg, err := setup.SetupTestDB(ctx)
	if err != nil {
		fmt.Println("Failed to start test DB:", err)
		os.Exit(1)
	}

	conf := config.Config{
		Log: config.LogConfig{
			LogLevel: "ERROR", // Use ERROR for benchmarks to reduce noise
		},
		DataSource: pg.DataSource,
		Locks: config.LocksConfig{
			Provider:   constants.LockProviderPostgres,
			TTLSeconds: 2,
		},
	}
	config.OverrideICRRuntime(conf)
	_ = log.Init("ERROR")

	code := m.Run()

	_ = pg.Container.Terminate(ctx)
	os.Exit(code)
}
