package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cbodonnell/bearpong/pkg/api"
	authproviders "github.com/cbodonnell/bearpong/pkg/auth/providers"
	"github.com/cbodonnell/bearpong/pkg/clients"
	"github.com/cbodonnell/bearpong/pkg/log"
	"github.com/cbodonnell/bearpong/pkg/matchmaking"
	"github.com/cbodonnell/bearpong/pkg/network"
	"github.com/cbodonnell/bearpong/pkg/queue"
	"github.com/cbodonnell/bearpong/pkg/repositories"
	"github.com/cbodonnell/bearpong/pkg/server"
	"github.com/cbodonnell/bearpong/pkg/sessions"
	"github.com/cbodonnell/bearpong/pkg/version"
	"github.com/cbodonnell/bearpong/pkg/workers"
)

func main() {
	wsPort := flag.Int("ws-port", 8888, "WebSocket port to listen on")
	apiPort := flag.Int("api-port", 8800, "HTTP API port to listen on")
	logLevel := flag.String("log-level", "info", "Log level")
	repositoryType := flag.String("repository", "inmem", "Repository type (inmem, sqlite, postgres)")
	sqlitePath := flag.String("sqlite-path", "bearpong.db", "Path to the SQLite database file")
	sqliteMigrations := flag.String("sqlite-migrations", "migrations/sqlite", "Path to the SQLite migrations directory")
	authProviderType := flag.String("auth-provider", "insecure", "Auth provider (insecure, firebase)")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get())
		return
	}

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting server version %s", version.Get())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var authProvider authproviders.AuthProvider
	switch *authProviderType {
	case "insecure":
		log.Warn("Using insecure auth provider; tokens are not verified")
		authProvider = authproviders.NewInsecureAuthProvider()
	case "firebase":
		projectID := os.Getenv("FIREBASE_PROJECT_ID")
		apiKey := os.Getenv("FIREBASE_API_KEY")
		if projectID == "" || apiKey == "" {
			panic("FIREBASE_PROJECT_ID and FIREBASE_API_KEY environment variables must be set")
		}
		authProvider, err = authproviders.NewFirebaseAuthProvider(ctx, projectID, apiKey)
		if err != nil {
			panic(fmt.Sprintf("Failed to create firebase auth provider: %v", err))
		}
	default:
		panic(fmt.Sprintf("Unknown auth provider: %s", *authProviderType))
	}

	var repository repositories.Repository
	switch *repositoryType {
	case "inmem":
		repository = repositories.NewInMemoryRepository()
	case "sqlite":
		repository, err = repositories.NewSQLiteRepository(ctx, *sqlitePath, *sqliteMigrations)
		if err != nil {
			panic(fmt.Sprintf("Failed to create sqlite repository: %v", err))
		}
	case "postgres":
		connStr := os.Getenv("DATABASE_URL")
		if connStr == "" {
			panic("DATABASE_URL environment variable must be set")
		}
		repository, err = repositories.NewPostgresRepository(ctx, connStr)
		if err != nil {
			panic(fmt.Sprintf("Failed to create postgres repository: %v", err))
		}
	default:
		panic(fmt.Sprintf("Unknown repository type: %s", *repositoryType))
	}
	defer repository.Close(ctx)

	clientManager := network.NewClientManager()
	clientEvents := clients.NewClientEventManager()
	clientMessageQueue := queue.NewInMemoryQueue(10000)

	networkManager := network.NewNetworkManager(network.NewNetworkManagerOptions{
		AuthProvider:  authProvider,
		ClientManager: clientManager,
		ClientEvents:  clientEvents,
		MessageQueue:  clientMessageQueue,
		WSPort:        *wsPort,
	})

	resultChan := make(chan sessions.Result, 100)
	matchmaker := matchmaking.NewMatchmaker(matchmaking.NewMatchmakerOptions{
		Queue:    queue.NewInMemoryQueue(1000),
		Notifier: networkManager,
		Results:  resultChan,
	})

	settlementWorker := workers.NewSettlementWorker(workers.NewSettlementWorkerOptions{
		Repository: repository,
		ResultChan: resultChan,
	})
	go settlementWorker.Start(ctx)

	gameServer := server.NewGameServer(server.NewGameServerOptions{
		NetworkManager: networkManager,
		ClientManager:  clientManager,
		ClientEvents:   clientEvents,
		MessageQueue:   clientMessageQueue,
		Matchmaker:     matchmaker,
		Repository:     repository,
	})

	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:         *apiPort,
		AuthProvider: authProvider,
		Repository:   repository,
		GameServer:   gameServer,
	})
	go apiServer.Start()
	defer apiServer.Stop(ctx)

	networkManager.Start(ctx)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info("Shutting down")
		cancel()
	}()

	log.Info("Starting game server")
	gameServer.Start(ctx)
}
