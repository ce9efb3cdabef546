package memory

import (
	"context"
	"testing"

	"github.com/willzeng274/HaystackDiet/internal/menu"
)

func TestJobStoreLifecycle(t *testing.T) {
	t.Parallel()

	store := NewJobStore()
	ctx := context.Background()
	job := menu.DiscoveryJob{ID: "job-1", Status: menu.JobStatusQueued}

	if err := store.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	if err := store.CreateJob(ctx, job); err == nil {
		t.Fatal("expected duplicate job error")
	}
	if err := store.UpdateJobStatus(ctx, job.ID, menu.JobStatusRunning, "", menu.JobCounters{}); err != nil {
		t.Fatalf("UpdateJobStatus running error = %v", err)
	}

	err := store.UpdateJobStatus(
		ctx,
		job.ID,
		menu.JobStatusSucceeded,
		"done",
		menu.JobCounters{OffsetsSearched: 11, RestaurantsKept: 4},
	)
	if err != nil {
		t.Fatalf("UpdateJobStatus succeeded error = %v", err)
	}
	final, err := store.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if final.Status != menu.JobStatusSucceeded || final.Started == nil || final.Finished == nil {
		t.Fatalf("expected timestamps set, got %+v", final)
	}
	if final.ErrorText != "done" || final.Counters.RestaurantsKept != 4 {
		t.Fatalf("expected counters/error text to persist, got %+v", final)
	}
}

func TestJobStoreUnknownJob(t *testing.T) {
	t.Parallel()

	store := NewJobStore()
	if _, err := store.GetJob(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown job")
	}
	if err := store.UpdateJobStatus(context.Background(), "missing", menu.JobStatusRunning, "", menu.JobCounters{}); err == nil {
		t.Fatal("expected error for unknown job update")
	}
}

func TestCatalogStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewCatalogStore()
	ctx := context.Background()
	catalog := []menu.Restaurant{{Name: "Joe's Diner", Address: "12 Main St"}}

	if err := store.SaveCatalog(ctx, "job-1", catalog); err != nil {
		t.Fatalf("SaveCatalog() error = %v", err)
	}
	got, err := store.GetCatalog(ctx, "job-1")
	if err != nil || len(got) != 1 {
		t.Fatalf("GetCatalog() unexpected result: got=%v err=%v", got, err)
	}
	got[0].Name = "modified"
	again, _ := store.GetCatalog(ctx, "job-1")
	if again[0].Name != "Joe's Diner" {
		t.Fatal("expected GetCatalog to return a copy")
	}

	if _, err := store.GetCatalog(ctx, "missing"); err == nil {
		t.Fatal("expected error for unknown catalog")
	}
}
