package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"runright.io/internal/auth"
	"runright.io/internal/cms"
	"runright.io/internal/gate"
	"runright.io/internal/mail"
	"runright.io/internal/obs"
	"runright.io/internal/rpc"
	"runright.io/internal/store/pg"
)

func main() {
	obs.Init()

	grpcAddr := envOr("RUNRIGHT_GRPC_ADDR", ":9090")
	metricsAddr := envOr("RUNRIGHT_METRICS_ADDR", ":9100")

	var store cms.Store
	var pgStore *pg.Store
	if dsn := os.Getenv("RUNRIGHT_PG_DSN"); dsn != "" {
		var err error
		pgStore, err = pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		store = pgStore
	} else {
		// No DSN means a development run against the in-memory store.
		log.Print("RUNRIGHT_PG_DSN not set, using in-memory store")
		store = cms.NewMemory()
	}

	resolver := auth.NewResolver(store)
	g := gate.New(resolver)

	server := grpc.NewServer(
		grpc.ForceServerCodec(rpc.Codec{}),
		grpc.ChainUnaryInterceptor(
			gate.RecoveryInterceptor(),
			obs.Instrument(),
			obs.RateLimit(20, 10),
			g.UnaryInterceptor(),
		),
	)

	mailer := mail.LogMailer{}
	rpc.RegisterUsersServer(server, rpc.NewUsersService(store, mailer))
	rpc.RegisterCompaniesServer(server, rpc.NewCompaniesService(store))
	rpc.RegisterCustomersServer(server, rpc.NewCustomersService(store))
	rpc.RegisterShoesServer(server, rpc.NewShoesService(store))
	rpc.RegisterDataServer(server, rpc.NewDataService(store))
	rpc.RegisterReportsServer(server, rpc.NewReportsService(store))

	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}

	metricsSrv := &http.Server{
		Addr:              metricsAddr,
		Handler:           obs.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
	}

	log.Printf("Starting runright-api %s, grpc on %s, metrics on %s", rpc.Version, grpcAddr, metricsAddr)

	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics listen: %v", err)
		}
	}()
	go func() {
		if err := server.Serve(lis); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	server.GracefulStop()
	_ = metricsSrv.Shutdown(ctx)
	if pgStore != nil {
		_ = pgStore.Close()
	}
	log.Println("Stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
