package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/llehouerou/wavecore/internal/db"
	"github.com/llehouerou/wavecore/internal/playlist"
)

// QueueState represents the saved queue state.
type QueueState struct {
	CurrentIndex int
	RepeatMode   playlist.RepeatMode
	Shuffle      bool
	Volume       float64
	Tracks       []playlist.Track
}

// Snapshot returns the tracks and index for restoring a queue.
func (s QueueState) Snapshot() playlist.Snapshot {
	return playlist.Snapshot{Tracks: s.Tracks, Index: s.CurrentIndex}
}

func getQueue(ctx context.Context, db *sql.DB) (*QueueState, error) {
	state := QueueState{}
	row := db.QueryRowContext(ctx, `
		SELECT current_index, repeat_mode, shuffle, volume
		FROM queue_state WHERE id = 1
	`)
	err := row.Scan(&state.CurrentIndex, &state.RepeatMode, &state.Shuffle, &state.Volume)
	if errors.Is(err, sql.ErrNoRows) {
		return &QueueState{CurrentIndex: -1, Volume: 1}, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT track_id, url, title, artist, album, artwork_url, duration_ms
		FROM queue_tracks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t playlist.Track
		var trackID, artist, album, artwork sql.NullString
		var durationMS sql.NullInt64

		err := rows.Scan(&trackID, &t.URL, &t.Title, &artist, &album, &artwork, &durationMS)
		if err != nil {
			return nil, err
		}

		t.ID = dbutil.NullStringValue(trackID)
		t.Artist = dbutil.NullStringValue(artist)
		t.Album = dbutil.NullStringValue(album)
		t.ArtworkURL = dbutil.NullStringValue(artwork)
		t.Duration = time.Duration(dbutil.NullInt64Value(durationMS)) * time.Millisecond
		state.Tracks = append(state.Tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &state, nil
}

func saveQueue(ctx context.Context, sqlDB *sql.DB, state QueueState) error {
	return dbutil.WithTx(ctx, sqlDB, func(tx *sql.Tx) error {
		// Clear existing queue
		_, err := tx.ExecContext(ctx, `DELETE FROM queue_tracks`)
		if err != nil {
			return err
		}

		// Save queue state
		_, err = tx.ExecContext(ctx, `
			INSERT INTO queue_state (id, current_index, repeat_mode, shuffle, volume)
			VALUES (1, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_index = excluded.current_index,
				repeat_mode = excluded.repeat_mode,
				shuffle = excluded.shuffle,
				volume = excluded.volume
		`, state.CurrentIndex, int(state.RepeatMode), state.Shuffle, state.Volume)
		if err != nil {
			return err
		}

		// Insert tracks
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO queue_tracks (position, track_id, url, title, artist, album, artwork_url, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range state.Tracks {
			var trackID any
			if t.ID != "" {
				trackID = t.ID
			}
			_, err = stmt.ExecContext(ctx, i, trackID, t.URL, t.Title, t.Artist, t.Album, t.ArtworkURL, t.Duration.Milliseconds())
			if err != nil {
				return err
			}
		}
		return nil
	})
}
