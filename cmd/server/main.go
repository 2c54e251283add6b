package main

import (
	"github.com/OFFIS-RIT/pathways/backend/internal/bootstrap"
	"github.com/OFFIS-RIT/pathways/backend/internal/server"
)

func main() {
	bootstrap.InitLogger("server")

	server.Init()
}
