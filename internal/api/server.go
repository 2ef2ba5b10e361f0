// Package api provides the HTTP API for the campaign.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (player control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/iLLituracy1/IbyllSaga-sub002/internal/conflict"
	"github.com/iLLituracy1/IbyllSaga-sub002/internal/engine"
	"github.com/iLLituracy1/IbyllSaga-sub002/internal/persistence"
	"github.com/iLLituracy1/IbyllSaga-sub002/internal/social"
	"github.com/iLLituracy1/IbyllSaga-sub002/internal/world"
)

// Server serves the campaign state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	// Public endpoints (GET, read-only — anyone can check in on the war).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/settlements", s.handleSettlements)
	mux.HandleFunc("/api/v1/regions", s.handleRegions)
	mux.HandleFunc("/api/v1/expeditions", s.handleExpeditions)
	mux.HandleFunc("/api/v1/expedition/", s.handleExpeditionRoutes)
	mux.HandleFunc("/api/v1/armies", s.handleArmies)
	mux.HandleFunc("/api/v1/battles", s.handleBattles)
	mux.HandleFunc("/api/v1/sieges", s.handleSieges)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	// Control endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "control endpoints disabled (no VIKINGSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	player := s.Sim.PlayerSettlement()

	status := map[string]any{
		"day":         s.Sim.Day,
		"date":        engine.SimDate(s.Sim.Day),
		"speed":       s.Eng.Speed(),
		"running":     s.Eng.Running(),
		"settlements": len(s.Sim.Settlements),
		"factions":    len(s.Sim.FactionList),
		"expeditions": len(s.Sim.Expeditions.Expeditions()),
		"armies":      len(s.Sim.Armies.FactionArmies()),
		"battles":     len(s.Sim.Resolver.ActiveBattles(false)),
		"sieges":      len(s.Sim.Resolver.ActiveSieges(false)),
	}
	if player != nil {
		status["player"] = map[string]any{
			"settlement": player.Name,
			"warriors":   player.Military.Warriors,
			"fame":       player.Fame,
			"population": player.Population,
		}
	}
	writeJSON(w, status)
}

func (s *Server) handleSettlements(w http.ResponseWriter, r *http.Request) {
	type settlementSummary struct {
		ID         string  `json:"id"`
		Name       string  `json:"name"`
		Region     string  `json:"region"`
		Faction    string  `json:"faction,omitempty"`
		Population int     `json:"population"`
		Rank       int     `json:"rank"`
		Warriors   int     `json:"warriors"`
		Defenses   int     `json:"defenses"`
		Fame       float64 `json:"fame"`
		Captured   bool    `json:"captured,omitempty"`
		Besieged   bool    `json:"besieged,omitempty"`
	}

	var result []settlementSummary
	for _, sett := range s.Sim.Settlements {
		result = append(result, settlementSummary{
			ID:         sett.ID,
			Name:       sett.Name,
			Region:     sett.RegionID,
			Faction:    sett.FactionID,
			Population: sett.Population,
			Rank:       sett.Rank,
			Warriors:   sett.Military.Warriors,
			Defenses:   sett.Military.Defenses,
			Fame:       sett.Fame,
			Captured:   sett.IsCaptured,
			Besieged:   s.Sim.Resolver.SiegeAgainst(sett.ID) != nil,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	type regionSummary struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		Type     string  `json:"type"`
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
		Size     float64 `json:"size"`
		Landmass string  `json:"landmass"`
		Owner    string  `json:"owner,omitempty"`
	}

	var result []regionSummary
	for _, region := range s.Sim.WorldMap.SortedRegions() {
		result = append(result, regionSummary{
			ID:       region.ID,
			Name:     region.Name,
			Type:     world.TypeName(region.Type),
			X:        region.Position.X,
			Y:        region.Position.Y,
			Size:     region.Size,
			Landmass: region.Landmass,
			Owner:    region.OwnerFactionID,
		})
	}
	writeJSON(w, result)
}

func expeditionView(e *conflict.Expedition) map[string]any {
	return map[string]any{
		"id":         e.ID,
		"name":       e.Name,
		"owner":      ownerName(e.Owner),
		"status":     e.EffectiveStatus().String(),
		"warriors":   e.Warriors,
		"casualties": e.Casualties,
		"strength":   e.Strength,
		"region":     e.CurrentRegionID,
		"target":     e.TargetRegionID,
		"loot":       e.Loot,
		"loot_total": social.TotalLoot(e.Loot),
		"fame":       e.Fame,
	}
}

func ownerName(o conflict.OwnerKind) string {
	if o == conflict.OwnerPlayer {
		return "player"
	}
	return "ai"
}

func (s *Server) handleExpeditions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var result []map[string]any
		for _, e := range s.Sim.Expeditions.Expeditions() {
			result = append(result, expeditionView(e))
		}
		writeJSON(w, result)

	case http.MethodPost:
		s.adminOnly(s.handleLaunchExpedition)(w, r)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleLaunchExpedition creates a player expedition and, when a target is
// given, sends it marching in one request.
func (s *Server) handleLaunchExpedition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Warriors         int    `json:"warriors"`
		Name             string `json:"name"`
		TargetRegion     string `json:"target_region"`
		TargetSettlement string `json:"target_settlement"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	e := s.Sim.Expeditions.CreatePlayerExpedition(req.Warriors, req.Name)
	if e == nil {
		http.Error(w, "expedition rejected: not enough warriors at home", http.StatusUnprocessableEntity)
		return
	}
	if req.TargetRegion != "" || req.TargetSettlement != "" {
		s.Sim.Expeditions.Start(e.ID, conflict.Orders{
			TargetRegionID:     req.TargetRegion,
			TargetSettlementID: req.TargetSettlement,
		})
	}
	writeJSON(w, expeditionView(e))
}

// handleExpeditionRoutes dispatches /api/v1/expedition/:id and the
// /recall and /disband actions beneath it.
func (s *Server) handleExpeditionRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 {
		http.Error(w, "missing expedition id", http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(parts[4])
	if err != nil {
		http.Error(w, "invalid expedition id", http.StatusBadRequest)
		return
	}
	e, ok := s.Sim.Expeditions.Expedition(id)
	if !ok {
		http.Error(w, "expedition not found", http.StatusNotFound)
		return
	}

	if len(parts) >= 6 && parts[5] != "" {
		action := parts[5]
		s.adminOnly(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			var ok bool
			switch action {
			case "recall":
				ok = s.Sim.Expeditions.Recall(id)
			case "disband":
				ok = s.Sim.Expeditions.Disband(id)
			default:
				http.Error(w, "unknown action", http.StatusNotFound)
				return
			}
			if !ok {
				http.Error(w, "expedition already disbanded", http.StatusConflict)
				return
			}
			writeJSON(w, expeditionView(e))
		})(w, r)
		return
	}

	writeJSON(w, expeditionView(e))
}

func (s *Server) handleArmies(w http.ResponseWriter, r *http.Request) {
	type armySummary struct {
		ID         uuid.UUID `json:"id"`
		Name       string    `json:"name"`
		Faction    string    `json:"faction"`
		Status     string    `json:"status"`
		Warriors   int       `json:"warriors"`
		Casualties int       `json:"casualties"`
		Region     string    `json:"region"`
		Target     string    `json:"target"`
		DaysActive float64   `json:"days_active"`
	}

	var result []armySummary
	for _, a := range s.Sim.Armies.FactionArmies() {
		result = append(result, armySummary{
			ID:         a.ID,
			Name:       a.Name,
			Faction:    a.FactionID,
			Status:     a.Status.String(),
			Warriors:   a.Warriors,
			Casualties: a.Casualties,
			Region:     a.CurrentRegionID,
			Target:     a.TargetRegionID,
			DaysActive: a.DaysActive,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleBattles(w http.ResponseWriter, r *http.Request) {
	includeConcluded := r.URL.Query().Get("all") == "true"

	var result []map[string]any
	for _, b := range s.Sim.Resolver.ActiveBattles(includeConcluded) {
		result = append(result, map[string]any{
			"id":                b.ID,
			"region":            b.RegionName,
			"phase":             b.Phase.String(),
			"turn":              b.Turn,
			"advantage":         b.Advantage,
			"attackers":         sideNames(b.Attackers),
			"defenders":         sideNames(b.Defenders),
			"attacker_strength": b.AttackerStrength,
			"defender_strength": b.DefenderStrength,
			"attacker_losses":   b.AttackerLosses,
			"defender_losses":   b.DefenderLosses,
			"outcome":           b.Outcome.String(),
			"log":               b.Log,
		})
	}
	writeJSON(w, result)
}

func sideNames(side []conflict.Combatant) []string {
	names := make([]string, 0, len(side))
	for _, c := range side {
		names = append(names, c.CombatantName())
	}
	return names
}

func (s *Server) handleSieges(w http.ResponseWriter, r *http.Request) {
	includeConcluded := r.URL.Query().Get("all") == "true"

	var result []map[string]any
	for _, siege := range s.Sim.Resolver.ActiveSieges(includeConcluded) {
		result = append(result, map[string]any{
			"id":               siege.ID,
			"settlement":       siege.SettlementName,
			"region":           siege.RegionName,
			"phase":            siege.Phase.String(),
			"progress":         siege.Progress,
			"defense_strength": siege.DefenseStrength,
			"days_active":      siege.DaysActive,
			"casualties":       siege.Casualties,
			"outcome":          siege.Outcome.String(),
			"log":              siege.Log,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		fmt.Sscanf(l, "%d", &limit)
		if limit <= 0 || limit > 500 {
			limit = 50
		}
	}

	events := s.Sim.Events

	// Optional category filter.
	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, events[start:])
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}
	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	if err := s.DB.SaveState(s.Sim); err != nil {
		slog.Error("snapshot failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"saved": true, "day": s.Sim.Day})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("JSON encode failed", "error", err)
	}
}
