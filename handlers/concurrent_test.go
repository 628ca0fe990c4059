// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/small-grants/models"
	"github.com/danielhkuo/small-grants/round"
	"github.com/danielhkuo/small-grants/testutil"
)

// TestConcurrentGrantSubmissions verifies that simultaneous submissions
// each get their own id
func TestConcurrentGrantSubmissions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	houseID, _ := testutil.CreateTestHouse(t, db, cfg, "public-goods", false)
	roundID := testutil.CreateTestRound(t, db, houseID, testutil.RoundFixture{})
	grantHandler := NewGrantHandler(db, testutil.NewFakeHub())

	numProposers := 10

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numProposers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			body := validGrantRequest(roundID)
			body.Address = fmt.Sprintf("0x%040x", idx+1)
			body.Title = fmt.Sprintf("Grant %d", idx)

			w := httptest.NewRecorder()
			grantHandler.CreateGrant(w, testutil.MakeRequest("POST", "/grants", body, nil))

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numProposers {
		t.Errorf("Expected %d successful submissions, got %d", numProposers, successCount.Load())
	}

	var count, distinct, maxID int
	err := db.QueryRow(`SELECT COUNT(*), COUNT(DISTINCT id), MAX(id) FROM grants WHERE round_id = $1`, roundID).
		Scan(&count, &distinct, &maxID)
	if err != nil {
		t.Fatalf("Failed to count grants: %v", err)
	}

	if count != numProposers || distinct != numProposers {
		t.Errorf("Expected %d grants with distinct ids, got %d rows and %d ids", numProposers, count, distinct)
	}
	if maxID != numProposers {
		t.Errorf("Expected ids 1..%d, max id is %d", numProposers, maxID)
	}
}

// TestConcurrentRoundReads verifies that parallel round reads share the hub
// and the database safely
func TestConcurrentRoundReads(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	roundID := roundWithGrants(t, db, round.StatusVoting, 2)
	hub := testutil.NewFakeHub()
	hub.Tallies["0xprop"] = sampleTally()
	roundHandler := NewRoundHandler(db, hub)

	numReaders := 20
	var wg sync.WaitGroup
	errs := make(chan string, numReaders)

	for i := 0; i < numReaders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			w := getRound(t, roundHandler, roundID, "?sort=votes&selected=1")
			if w.Code != http.StatusOK {
				errs <- fmt.Sprintf("status %d: %s", w.Code, w.Body.String())
				return
			}
			var detail models.RoundDetail
			if err := json.NewDecoder(w.Body).Decode(&detail); err != nil {
				errs <- err.Error()
				return
			}
			if len(detail.Highlighted) != 1 || detail.Highlighted[0] != 1 {
				errs <- fmt.Sprintf("unexpected highlighted %v", detail.Highlighted)
			}
		}()
	}

	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
}
