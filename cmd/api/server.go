package main

import (
	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	v1 "github.com/PaulBabatuyi/chitChest-gRPC/api/chest/v1"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/auth"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/service"
)

// Server implements the chest service on top of the domain service and the auth manager.
type Server struct {
	v1.UnimplementedChestServiceServer

	svc  *service.Service
	auth *auth.JWTManager
	log  zerolog.Logger
}

// newServer returns a ready-to-use Server wired with the domain service and auth manager.
func newServer(svc *service.Service, authMgr *auth.JWTManager, log zerolog.Logger) *Server {
	return &Server{svc: svc, auth: authMgr, log: log}
}

// registerService registers the ChestService on the given gRPC server.
func registerService(s *grpc.Server, srv *Server) {
	v1.RegisterChestServiceServer(s, srv)
}
