package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/shoplore/core"
	"github.com/poiesic/shoplore/storage"
)

func TestDialogRecordBasics(t *testing.T) {
	// Create in-memory repositories
	docRepo, dialogRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		dialogRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	// Test adding a dialog record
	record := &core.DialogRecord{
		ChatID:    12345,
		UserID:    67890,
		Username:  "masha",
		FirstName: "Мария",
		Role:      core.RoleUser,
		Contents:  "Посоветуйте крем для сухой кожи",
		Timestamp: time.Now().UTC(),
	}

	added, err := dialogRepo.AddDialogRecords(ctx, record)
	if err != nil {
		t.Fatalf("Failed to add dialog record: %v", err)
	}

	if len(added) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(added))
	}

	if added[0].Id == 0 {
		t.Fatal("Expected non-zero ID")
	}

	// Test retrieving the record
	retrieved, err := dialogRepo.GetDialogRecord(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get dialog record: %v", err)
	}

	if retrieved.Contents != "Посоветуйте крем для сухой кожи" {
		t.Fatalf("Unexpected contents: '%s'", retrieved.Contents)
	}
	if retrieved.ChatID != 12345 {
		t.Fatalf("Expected chat 12345, got %d", retrieved.ChatID)
	}
	if retrieved.Username != "masha" || retrieved.FirstName != "Мария" {
		t.Fatalf("User fields not preserved: %q %q", retrieved.Username, retrieved.FirstName)
	}
	if retrieved.Role != core.RoleUser {
		t.Fatalf("Expected user role, got %v", retrieved.Role)
	}
}

func TestDialogRecordDateRange(t *testing.T) {
	docRepo, dialogRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { docRepo.Close(); dialogRepo.Close(); backend.Close() }()

	ctx := context.Background()

	// Add records with different timestamps
	now := time.Now().UTC()
	records := []*core.DialogRecord{
		{ChatID: 100, Role: core.RoleUser, Contents: "Message 1", Timestamp: now.Add(-2 * time.Hour)},
		{ChatID: 100, Role: core.RoleAssistant, Contents: "Message 2", Timestamp: now.Add(-1 * time.Hour)},
		{ChatID: 100, Role: core.RoleUser, Contents: "Message 3", Timestamp: now},
	}

	_, err = dialogRepo.AddDialogRecords(ctx, records...)
	if err != nil {
		t.Fatalf("Failed to add dialog records: %v", err)
	}

	// Another chat's records must not leak into the range
	other := &core.DialogRecord{ChatID: 200, Role: core.RoleUser, Contents: "Other chat", Timestamp: now.Add(-30 * time.Minute)}
	if _, err := dialogRepo.AddDialogRecords(ctx, other); err != nil {
		t.Fatalf("Failed to add other chat record: %v", err)
	}

	// Query for records in the last 90 minutes
	start := now.Add(-90 * time.Minute)
	end := now.Add(1 * time.Minute)

	results, err := dialogRepo.GetDialogRecordsByDateRange(ctx, 100, start, end)
	if err != nil {
		t.Fatalf("Failed to get records by date range: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(results))
	}
	for _, r := range results {
		if r.ChatID != 100 {
			t.Fatalf("Record from wrong chat: %d", r.ChatID)
		}
	}
}

func TestGetRecentDialogRecords(t *testing.T) {
	docRepo, dialogRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { docRepo.Close(); dialogRepo.Close(); backend.Close() }()

	ctx := context.Background()

	// Add records with incrementing timestamps
	now := time.Now().UTC().Truncate(time.Microsecond)
	records := []*core.DialogRecord{
		{ChatID: 42, Role: core.RoleUser, Contents: "Message 1", Timestamp: now.Add(-4 * time.Hour)},
		{ChatID: 42, Role: core.RoleAssistant, Contents: "Response 1", Timestamp: now.Add(-3 * time.Hour)},
		{ChatID: 42, Role: core.RoleUser, Contents: "Message 2", Timestamp: now.Add(-2 * time.Hour)},
		{ChatID: 42, Role: core.RoleAssistant, Contents: "Response 2", Timestamp: now.Add(-1 * time.Hour)},
		{ChatID: 42, Role: core.RoleUser, Contents: "Message 3", Timestamp: now},
	}

	_, err = dialogRepo.AddDialogRecords(ctx, records...)
	if err != nil {
		t.Fatalf("Failed to add dialog records: %v", err)
	}

	// A busy group chat with a negative ID must stay isolated
	group := []*core.DialogRecord{
		{ChatID: -1001234567890, Role: core.RoleUser, Contents: "Group 1", Timestamp: now.Add(-10 * time.Minute)},
		{ChatID: -1001234567890, Role: core.RoleUser, Contents: "Group 2", Timestamp: now.Add(-5 * time.Minute)},
	}
	if _, err := dialogRepo.AddDialogRecords(ctx, group...); err != nil {
		t.Fatalf("Failed to add group records: %v", err)
	}

	// Test: Get last 3 records for chat 42
	results, err := dialogRepo.GetRecentDialogRecords(ctx, 42, 3)
	if err != nil {
		t.Fatalf("Failed to get recent records: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(results))
	}

	// Verify order: most recent first
	if results[0].Contents != "Message 3" {
		t.Errorf("Expected 'Message 3' first, got '%s'", results[0].Contents)
	}
	if results[1].Contents != "Response 2" {
		t.Errorf("Expected 'Response 2' second, got '%s'", results[1].Contents)
	}
	if results[2].Contents != "Message 2" {
		t.Errorf("Expected 'Message 2' third, got '%s'", results[2].Contents)
	}

	// Test: Get all records for chat 42
	allResults, err := dialogRepo.GetRecentDialogRecords(ctx, 42, 10)
	if err != nil {
		t.Fatalf("Failed to get all records: %v", err)
	}

	if len(allResults) != 5 {
		t.Fatalf("Expected 5 records, got %d", len(allResults))
	}

	// Test: The group chat sees only its own records
	groupResults, err := dialogRepo.GetRecentDialogRecords(ctx, -1001234567890, 10)
	if err != nil {
		t.Fatalf("Failed to get group records: %v", err)
	}
	if len(groupResults) != 2 {
		t.Fatalf("Expected 2 group records, got %d", len(groupResults))
	}
	if groupResults[0].Contents != "Group 2" {
		t.Errorf("Expected 'Group 2' first, got '%s'", groupResults[0].Contents)
	}

	// Test: Unknown chat has no history
	empty, err := dialogRepo.GetRecentDialogRecords(ctx, 777, 10)
	if err != nil {
		t.Fatalf("Failed to get records for unknown chat: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("Expected no records, got %d", len(empty))
	}
}

func TestDeleteDialogRecords(t *testing.T) {
	docRepo, dialogRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { docRepo.Close(); dialogRepo.Close(); backend.Close() }()

	ctx := context.Background()

	now := time.Now().UTC()
	records := []*core.DialogRecord{
		{ChatID: 9, Role: core.RoleUser, Contents: "Keep", Timestamp: now.Add(-time.Minute)},
		{ChatID: 9, Role: core.RoleAssistant, Contents: "Drop", Timestamp: now},
	}
	added, err := dialogRepo.AddDialogRecords(ctx, records...)
	if err != nil {
		t.Fatalf("Failed to add dialog records: %v", err)
	}

	if err := dialogRepo.DeleteDialogRecords(ctx, added[1].Id); err != nil {
		t.Fatalf("Failed to delete dialog record: %v", err)
	}

	_, err = dialogRepo.GetDialogRecord(ctx, added[1].Id)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}

	// The per-chat index entry must be gone too
	recent, err := dialogRepo.GetRecentDialogRecords(ctx, 9, 10)
	if err != nil {
		t.Fatalf("Failed to get recent records: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("Expected 1 record after delete, got %d", len(recent))
	}
	if recent[0].Contents != "Keep" {
		t.Fatalf("Wrong record survived: '%s'", recent[0].Contents)
	}
}

func TestDialogRecordSequentialIDs(t *testing.T) {
	docRepo, dialogRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { docRepo.Close(); dialogRepo.Close(); backend.Close() }()

	ctx := context.Background()

	now := time.Now().UTC()
	records := []*core.DialogRecord{
		{ChatID: 1, Role: core.RoleUser, Contents: "a", Timestamp: now},
		{ChatID: 1, Role: core.RoleAssistant, Contents: "b", Timestamp: now},
		{ChatID: 1, Role: core.RoleUser, Contents: "c", Timestamp: now},
	}
	added, err := dialogRepo.AddDialogRecords(ctx, records...)
	if err != nil {
		t.Fatalf("Failed to add dialog records: %v", err)
	}

	for i, record := range added {
		if record.Id == 0 {
			t.Fatalf("Record %d got zero ID", i)
		}
		if i > 0 && added[i].Id <= added[i-1].Id {
			t.Fatalf("Expected increasing IDs, got %d after %d", added[i].Id, added[i-1].Id)
		}
	}
}
