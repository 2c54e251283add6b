package main

import (
	"context"
	"os"

	"github.com/OFFIS-RIT/pathways/backend/internal/bootstrap"
	"github.com/OFFIS-RIT/pathways/backend/internal/util"
	"github.com/OFFIS-RIT/pathways/backend/pkg/graph"
	"github.com/OFFIS-RIT/pathways/backend/pkg/logger"
	"github.com/OFFIS-RIT/pathways/backend/pkg/source"
)

func main() {
	bootstrap.InitLogger("pathwaysctl")

	app := &cli{
		out:        os.Stdout,
		openSource: bootstrap.NewRecordSource,
		loadGraph:  loadGraph,
		parallel:   util.GetEnvInt("FETCH_PARALLEL", len(source.AllTables)),
	}

	if err := newRootCmd(app).Execute(); err != nil {
		logger.Error("Command failed", "err", err)
		os.Exit(1)
	}
}

func loadGraph(ctx context.Context) (*graph.Graph, error) {
	s, closeSource, err := bootstrap.NewGraphStore(ctx)
	if err != nil {
		return nil, err
	}
	defer closeSource()
	return s.Reload(ctx)
}
