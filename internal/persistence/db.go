// Package persistence provides SQLite-based campaign state storage.
// Battles and sieges are ephemeral and deliberately not persisted; they
// re-trigger from expedition and army positions after a restore.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/iLLituracy1/IbyllSaga-sub002/internal/conflict"
	"github.com/iLLituracy1/IbyllSaga-sub002/internal/engine"
	"github.com/iLLituracy1/IbyllSaga-sub002/internal/social"
)

// DB wraps a SQLite connection for campaign state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settlements (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		region_id TEXT NOT NULL,
		faction_id TEXT NOT NULL,
		population INTEGER NOT NULL,
		rank INTEGER NOT NULL,
		warriors INTEGER NOT NULL,
		defenses INTEGER NOT NULL,
		fame REAL NOT NULL,
		is_captured INTEGER NOT NULL,
		resources_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS expeditions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		home_settlement_id TEXT NOT NULL,
		owner INTEGER NOT NULL,
		warriors INTEGER NOT NULL,
		initial_warriors INTEGER NOT NULL,
		casualties INTEGER NOT NULL,
		strength_bonus REAL NOT NULL,
		origin_region_id TEXT NOT NULL,
		current_region_id TEXT NOT NULL,
		target_region_id TEXT NOT NULL,
		target_settlement_id TEXT NOT NULL,
		path_json TEXT NOT NULL,
		muster_progress REAL NOT NULL,
		move_progress REAL NOT NULL,
		siege_progress REAL NOT NULL,
		fame REAL NOT NULL,
		status INTEGER NOT NULL,
		loot_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS armies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		faction_id TEXT NOT NULL,
		warriors INTEGER NOT NULL,
		initial_warriors INTEGER NOT NULL,
		casualties INTEGER NOT NULL,
		origin_region_id TEXT NOT NULL,
		current_region_id TEXT NOT NULL,
		target_region_id TEXT NOT NULL,
		days_until_arrival REAL NOT NULL,
		days_active REAL NOT NULL,
		status INTEGER NOT NULL,
		contributions_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		day REAL NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS campaign_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_day ON events(day);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// HasState reports whether a saved campaign exists.
func (db *DB) HasState() bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM campaign_meta WHERE key = 'day'"); err != nil {
		return false
	}
	return count > 0
}

// GetMeta returns a metadata value by key.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM campaign_meta WHERE key = ?", key)
	return value, err
}

// SaveState writes the full campaign state (full replace).
func (db *DB) SaveState(sim *engine.Simulation) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveSettlements(tx, sim.Settlements); err != nil {
		return err
	}
	if err := saveExpeditions(tx, sim.Expeditions.Expeditions()); err != nil {
		return err
	}
	if err := saveArmies(tx, sim.Armies.FactionArmies()); err != nil {
		return err
	}
	if err := saveEvents(tx, sim.Events); err != nil {
		return err
	}

	day := strconv.FormatFloat(sim.Day, 'f', -1, 64)
	if _, err := tx.Exec(
		"INSERT INTO campaign_meta (key, value) VALUES ('day', ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		day,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func saveSettlements(tx *sqlx.Tx, setts []*social.Settlement) error {
	if _, err := tx.Exec("DELETE FROM settlements"); err != nil {
		return err
	}
	stmt, err := tx.Preparex(`INSERT INTO settlements
		(id, name, region_id, faction_id, population, rank, warriors, defenses, fame, is_captured, resources_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range setts {
		resJSON, _ := json.Marshal(s.Resources)
		captured := 0
		if s.IsCaptured {
			captured = 1
		}
		if _, err := stmt.Exec(
			s.ID, s.Name, s.RegionID, s.FactionID, s.Population, s.Rank,
			s.Military.Warriors, s.Military.Defenses, s.Fame, captured, string(resJSON),
		); err != nil {
			return fmt.Errorf("insert settlement %s: %w", s.ID, err)
		}
	}
	return nil
}

func saveExpeditions(tx *sqlx.Tx, expeditions []*conflict.Expedition) error {
	if _, err := tx.Exec("DELETE FROM expeditions"); err != nil {
		return err
	}
	stmt, err := tx.Preparex(`INSERT INTO expeditions
		(id, name, home_settlement_id, owner, warriors, initial_warriors, casualties,
		 strength_bonus, origin_region_id, current_region_id, target_region_id,
		 target_settlement_id, path_json, muster_progress, move_progress, siege_progress,
		 fame, status, loot_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range expeditions {
		// Disbanded records are in their grace window; they do not survive
		// a restart.
		if e.Status == conflict.StatusDisbanded {
			continue
		}
		pathJSON, _ := json.Marshal(e.Path)
		lootJSON, _ := json.Marshal(e.Loot)
		if _, err := stmt.Exec(
			e.ID.String(), e.Name, e.HomeSettlementID, e.Owner,
			e.Warriors, e.InitialWarriors, e.Casualties, e.StrengthBonus,
			e.OriginRegionID, e.CurrentRegionID, e.TargetRegionID, e.TargetSettlementID,
			string(pathJSON), e.MusterProgress, e.MoveProgress, e.SiegeProgress,
			e.Fame, e.Status, string(lootJSON),
		); err != nil {
			return fmt.Errorf("insert expedition %s: %w", e.ID, err)
		}
	}
	return nil
}

func saveArmies(tx *sqlx.Tx, armies []*conflict.FactionArmy) error {
	if _, err := tx.Exec("DELETE FROM armies"); err != nil {
		return err
	}
	stmt, err := tx.Preparex(`INSERT INTO armies
		(id, name, faction_id, warriors, initial_warriors, casualties,
		 origin_region_id, current_region_id, target_region_id,
		 days_until_arrival, days_active, status, contributions_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range armies {
		if a.Status == conflict.ArmyDisbanding {
			continue
		}
		contribJSON, _ := json.Marshal(a.Contributions)
		if _, err := stmt.Exec(
			a.ID.String(), a.Name, a.FactionID,
			a.Warriors, a.InitialWarriors, a.Casualties,
			a.OriginRegionID, a.CurrentRegionID, a.TargetRegionID,
			a.DaysUntilArrival, a.DaysActive, a.Status, string(contribJSON),
		); err != nil {
			return fmt.Errorf("insert army %s: %w", a.ID, err)
		}
	}
	return nil
}

func saveEvents(tx *sqlx.Tx, events []engine.Event) error {
	stmt, err := tx.Preparex("INSERT INTO events (day, description, category) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	// Events are append-only: clear and rewrite the retained ring.
	if _, err := tx.Exec("DELETE FROM events"); err != nil {
		return err
	}
	for _, ev := range events {
		if _, err := stmt.Exec(ev.Day, ev.Description, ev.Category); err != nil {
			return err
		}
	}
	return nil
}

// LoadState restores saved campaign state into a freshly built simulation.
func (db *DB) LoadState(sim *engine.Simulation) error {
	if err := db.loadSettlements(sim); err != nil {
		return fmt.Errorf("load settlements: %w", err)
	}
	if err := db.loadExpeditions(sim); err != nil {
		return fmt.Errorf("load expeditions: %w", err)
	}
	if err := db.loadArmies(sim); err != nil {
		return fmt.Errorf("load armies: %w", err)
	}

	if dayStr, err := db.GetMeta("day"); err == nil {
		if day, err := strconv.ParseFloat(dayStr, 64); err == nil {
			sim.Day = day
		}
	}

	slog.Info("campaign state restored", "day", sim.Day)
	return nil
}

type settlementRow struct {
	ID            string  `db:"id"`
	Name          string  `db:"name"`
	RegionID      string  `db:"region_id"`
	FactionID     string  `db:"faction_id"`
	Population    int     `db:"population"`
	Rank          int     `db:"rank"`
	Warriors      int     `db:"warriors"`
	Defenses      int     `db:"defenses"`
	Fame          float64 `db:"fame"`
	IsCaptured    int     `db:"is_captured"`
	ResourcesJSON string  `db:"resources_json"`
}

func (db *DB) loadSettlements(sim *engine.Simulation) error {
	var rows []settlementRow
	if err := db.conn.Select(&rows, "SELECT * FROM settlements"); err != nil {
		return err
	}
	for _, row := range rows {
		sett, ok := sim.Settlement(row.ID)
		if !ok {
			slog.Warn("saved settlement not in scenario, skipping", "settlement", row.ID)
			continue
		}
		sett.FactionID = row.FactionID
		sett.Population = row.Population
		sett.Rank = row.Rank
		sett.Military.Warriors = row.Warriors
		sett.Military.Defenses = row.Defenses
		sett.Fame = row.Fame
		sett.IsCaptured = row.IsCaptured != 0
		var res map[social.Resource]float64
		if err := json.Unmarshal([]byte(row.ResourcesJSON), &res); err == nil {
			sett.Resources = res
		}
	}
	return nil
}

type expeditionRow struct {
	ID                 string  `db:"id"`
	Name               string  `db:"name"`
	HomeSettlementID   string  `db:"home_settlement_id"`
	Owner              int     `db:"owner"`
	Warriors           int     `db:"warriors"`
	InitialWarriors    int     `db:"initial_warriors"`
	Casualties         int     `db:"casualties"`
	StrengthBonus      float64 `db:"strength_bonus"`
	OriginRegionID     string  `db:"origin_region_id"`
	CurrentRegionID    string  `db:"current_region_id"`
	TargetRegionID     string  `db:"target_region_id"`
	TargetSettlementID string  `db:"target_settlement_id"`
	PathJSON           string  `db:"path_json"`
	MusterProgress     float64 `db:"muster_progress"`
	MoveProgress       float64 `db:"move_progress"`
	SiegeProgress      float64 `db:"siege_progress"`
	Fame               float64 `db:"fame"`
	Status             int     `db:"status"`
	LootJSON           string  `db:"loot_json"`
}

func (db *DB) loadExpeditions(sim *engine.Simulation) error {
	var rows []expeditionRow
	if err := db.conn.Select(&rows, "SELECT * FROM expeditions"); err != nil {
		return err
	}
	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			slog.Warn("bad expedition id in save, skipping", "id", row.ID)
			continue
		}
		e := &conflict.Expedition{
			ID:                 id,
			Name:               row.Name,
			HomeSettlementID:   row.HomeSettlementID,
			Owner:              conflict.OwnerKind(row.Owner),
			Warriors:           row.Warriors,
			InitialWarriors:    row.InitialWarriors,
			Casualties:         row.Casualties,
			StrengthBonus:      row.StrengthBonus,
			OriginRegionID:     row.OriginRegionID,
			CurrentRegionID:    row.CurrentRegionID,
			TargetRegionID:     row.TargetRegionID,
			TargetSettlementID: row.TargetSettlementID,
			MusterProgress:     row.MusterProgress,
			MoveProgress:       row.MoveProgress,
			SiegeProgress:      row.SiegeProgress,
			Fame:               row.Fame,
			Status:             conflict.ExpeditionStatus(row.Status),
		}
		json.Unmarshal([]byte(row.PathJSON), &e.Path)
		json.Unmarshal([]byte(row.LootJSON), &e.Loot)
		sim.Expeditions.Restore(e)
	}
	return nil
}

type armyRow struct {
	ID                string  `db:"id"`
	Name              string  `db:"name"`
	FactionID         string  `db:"faction_id"`
	Warriors          int     `db:"warriors"`
	InitialWarriors   int     `db:"initial_warriors"`
	Casualties        int     `db:"casualties"`
	OriginRegionID    string  `db:"origin_region_id"`
	CurrentRegionID   string  `db:"current_region_id"`
	TargetRegionID    string  `db:"target_region_id"`
	DaysUntilArrival  float64 `db:"days_until_arrival"`
	DaysActive        float64 `db:"days_active"`
	Status            int     `db:"status"`
	ContributionsJSON string  `db:"contributions_json"`
}

func (db *DB) loadArmies(sim *engine.Simulation) error {
	var rows []armyRow
	if err := db.conn.Select(&rows, "SELECT * FROM armies"); err != nil {
		return err
	}
	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			slog.Warn("bad army id in save, skipping", "id", row.ID)
			continue
		}
		a := &conflict.FactionArmy{
			ID:               id,
			Name:             row.Name,
			FactionID:        row.FactionID,
			Warriors:         row.Warriors,
			InitialWarriors:  row.InitialWarriors,
			Casualties:       row.Casualties,
			OriginRegionID:   row.OriginRegionID,
			CurrentRegionID:  row.CurrentRegionID,
			TargetRegionID:   row.TargetRegionID,
			DaysUntilArrival: row.DaysUntilArrival,
			DaysActive:       row.DaysActive,
			Status:           conflict.ArmyStatus(row.Status),
		}
		json.Unmarshal([]byte(row.ContributionsJSON), &a.Contributions)
		sim.Armies.Restore(a)
	}
	return nil
}
