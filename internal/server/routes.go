package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Documents
	mux.HandleFunc("/api/documents", s.handleDocumentsRoute)
	mux.HandleFunc("/api/documents/", s.handleDocumentRoutes) // Handles /api/documents/{id} and subpaths

	// API routes - Viewer
	mux.HandleFunc("/api/viewer/credentials", s.app.ViewerHandler.CredentialsHandler)

	// API routes - System
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleDocumentsRoute routes /api/documents requests (list and upload)
func (s *Server) handleDocumentsRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.app.DocumentHandler.ListHandler(w, r)
	case "POST":
		s.app.DocumentHandler.UploadHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleDocumentRoutes routes /api/documents/{id} requests and subpaths
func (s *Server) handleDocumentRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	if path == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	id, sub, _ := strings.Cut(path, "/")
	if id == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	switch sub {
	case "":
		switch r.Method {
		case "GET":
			s.app.DocumentHandler.GetHandler(w, r, id)
		case "DELETE":
			s.app.DocumentHandler.DeleteHandler(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "file":
		if r.Method != "GET" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.app.DocumentHandler.FileHandler(w, r, id)
	case "extract":
		if r.Method != "GET" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.app.ExtractHandler.ExtractHandler(w, r, id)
	case "extract/download":
		if r.Method != "GET" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.app.ExtractHandler.DownloadHandler(w, r, id)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}
