package library

import (
	"bytes"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	dbutil "github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/db"
)

// AddArtwork adds an artwork image to the library if it does not
// already exist, returning the artwork id. Deduplication is by exact
// byte match: adding a byte-identical image returns the existing id
// without inserting a new row. Lookup and insert happen in one
// transaction so concurrent adds of the same image cannot both insert.
func (l *Library) AddArtwork(image []byte) (string, error) {
	if len(image) == 0 {
		return "", errors.New("empty image")
	}

	var id string
	err := dbutil.WithTx(l.db, func(tx *sql.Tx) error {
		existing, err := findArtwork(tx, image)
		if err != nil {
			return err
		}
		if existing != "" {
			id = existing
			return nil
		}
		id = uuid.NewString()
		_, err = tx.Exec(`INSERT INTO artwork (id, image) VALUES (?, ?)`, id, image)
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// findArtwork scans the artwork table for a byte-identical image.
// A full byte-for-byte scan per insert is accepted at expected library
// sizes; candidates are narrowed by length first.
func findArtwork(tx *sql.Tx, image []byte) (string, error) {
	rows, err := tx.Query(`
		SELECT id, image FROM artwork WHERE length(image) = ?
	`, len(image))
	if err != nil {
		return "", err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var stored []byte
		if err := rows.Scan(&id, &stored); err != nil {
			return "", err
		}
		if bytes.Equal(stored, image) {
			return id, nil
		}
	}
	return "", rows.Err()
}

// MediaArtwork resolves the record's artwork reference to image bytes.
// Returns empty bytes when the record has no artwork or the reference
// is dangling.
func (l *Library) MediaArtwork(info MediaInfo) []byte {
	return l.artworkByID(info.ArtworkID)
}

func (l *Library) artworkByID(id string) []byte {
	if id == "" {
		return nil
	}
	var image []byte
	err := l.db.QueryRow(`SELECT image FROM artwork WHERE id = ?`, id).Scan(&image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		l.log.Warn().Str("artwork", id).Err(err).Msg("load artwork")
		return nil
	}
	return image
}
