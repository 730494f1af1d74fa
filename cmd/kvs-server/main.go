// Command kvs-server wires an engine to the TCP protocol server and the
// ambient admin HTTP endpoint, then serves until killed. Argument
// parsing conventions, help text, and exit codes are an external
// collaborator per §1 of the spec; this main exists only to wire the
// already-specified components together, matching the teacher's
// cmd/server/main.go minimalism.
package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/aleksandarhr/kvs/internal/engine"
	"github.com/aleksandarhr/kvs/internal/kvstore"
	"github.com/aleksandarhr/kvs/internal/server"
	"github.com/aleksandarhr/kvs/internal/sledengine"
	"github.com/aleksandarhr/kvs/pkg/config"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:4000", "address to serve the kvs protocol on")
	adminAddr := flag.String("admin-addr", "127.0.0.1:4001", "address to serve the admin HTTP endpoint on")
	engineName := flag.String("engine", string(engine.NameKVS), "storage engine: kvs or sled")
	dir := flag.String("dir", ".", "data directory")
	flag.Parse()

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()
	sugar := zl.Sugar()

	cfg := config.Default()
	name := engine.Name(*engineName)
	if err := engine.WriteMarker(*dir, cfg.EngineMarkerFile, name); err != nil {
		sugar.Fatalw("engine marker mismatch", "dir", *dir, "requested", name, "err", err)
	}

	var e engine.Engine
	switch name {
	case engine.NameKVS:
		e, err = kvstore.Open(*dir, sugar, cfg)
	case engine.NameSled:
		e, err = sledengine.Open(*dir + "/kvs.db")
	default:
		sugar.Fatalw("unknown engine", "engine", name)
	}
	if err != nil {
		sugar.Fatalw("failed to open engine", "engine", name, "err", err)
	}
	defer e.Close()

	srv := server.New(e, sugar)

	admin := server.NewAdminServer(*adminAddr, srv)
	go func() {
		if err := admin.ListenAndServe(); err != nil {
			sugar.Warnw("admin server stopped", "err", err)
		}
	}()

	sugar.Infow("starting kvs-server", "addr", *addr, "adminAddr", *adminAddr, "engine", name, "dir", *dir)
	if err := srv.Run(*addr); err != nil {
		sugar.Fatalw("server exited", "err", err)
	}
}
