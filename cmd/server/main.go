package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/wso2/identity-contact-resolution-service/internal/system/config"
	"github.com/wso2/identity-contact-resolution-service/internal/system/constants"
	syscontext "github.com/wso2/identity-contact-resolution-service/internal/system/context"
	"github.com/wso2/identity-contact-resolution-service/internal/system/database/mongo"
	"github.com/wso2/identity-contact-resolution-service/internal/system/database/provider"
	logger "github.com/wso2/identity-contact-resolution-service/internal/system/log"
	"github.com/wso2/identity-contact-resolution-service/internal/system/managers"
)

const (
	configFile = "repository/conf/deployment.yaml"
	schemaFile = "dbscripts/schema.sql"
)

func main() {
	icrHome := getICRHome()

	envFiles, err := filepath.Glob("config/*.env")
	if err == nil && len(envFiles) > 0 {
		_ = godotenv.Load(envFiles...)
	}

	// Load the configuration file.
	icrConfig, err := config.LoadConfig(icrHome, configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize runtime configurations.
	if err := config.InitializeICRRuntime(icrHome, icrConfig); err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	if err := logger.Init(icrConfig.Log.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	initDatabase(icrHome)

	// The mongo backend is only needed when it backs the distributed lock.
	if icrConfig.Locks.Provider == constants.LockProviderMongo {
		if err := mongo.Init(icrConfig.Mongo.URI, icrConfig.Mongo.Database); err != nil {
			log.Fatalf("Failed to initialize mongo lock backend: %v", err)
		}
	}

	serverAddr := fmt.Sprintf("%s:%d", icrConfig.Addr.Host, icrConfig.Addr.Port)
	mux := withTraceID(enableCORS(initMultiplexer()))

	ln, err := net.Listen("tcp", serverAddr)
	if err != nil {
		log.Fatalf("Failed to start listener: %v", err)
	}
	logger.GetLogger().Info("Contact resolution service started", logger.String("address", serverAddr))

	server := &http.Server{Handler: mux}
	if err := server.Serve(ln); err != nil {
		logger.GetLogger().Fatal("Failed to serve requests", logger.Error(err))
	}
}

// initDatabase verifies connectivity and applies the schema.
func initDatabase(icrHome string) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer dbClient.Close()

	if err := dbClient.InitDatabase(icrHome, schemaFile); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}
}

// initMultiplexer initializes the HTTP multiplexer and registers the services.
func initMultiplexer() *http.ServeMux {

	mux := http.NewServeMux()
	serviceManager := managers.NewServiceManager(mux)

	if err := serviceManager.RegisterServices(constants.ApiBasePath); err != nil {
		logger.GetLogger().Fatal("Failed to register the services", logger.Error(err))
	}

	return mux
}

// withTraceID stamps every request with a trace id so errors can be
// correlated across logs and responses.
func withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := syscontext.GetOrGenerateTraceID(r.Context())
		w.Header().Set("X-Trace-Id", traceID)
		next.ServeHTTP(w, r.WithContext(syscontext.WithTraceID(r.Context(), traceID)))
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getICRHome() string {

	projectHome := ""
	projectHomeFlag := flag.String("icrHome", "", "Path to the contact resolution service home directory")
	flag.Parse()

	if *projectHomeFlag != "" {
		projectHome = *projectHomeFlag
	} else {
		dir, dirErr := os.Getwd()
		if dirErr != nil {
			log.Fatalf("Failed to get current working directory: %v", dirErr)
		}
		projectHome = dir
	}

	return projectHome
}
