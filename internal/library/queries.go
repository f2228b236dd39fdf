package library

import (
	"strings"
)

// Artists returns the artists contained in the media library.
// Empty values are excluded.
func (l *Library) Artists() ([]string, error) {
	return l.facetValues("artist")
}

// Albums returns the albums contained in the media library.
func (l *Library) Albums() ([]string, error) {
	return l.facetValues("album")
}

// AlbumsByArtist returns the albums by an artist.
func (l *Library) AlbumsByArtist(artist string) ([]string, error) {
	rows, err := l.db.Query(`
		SELECT DISTINCT album FROM media
		WHERE artist = ? AND album IS NOT NULL AND album <> ''
		ORDER BY album COLLATE NOCASE
	`, artist)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var albums []string
	for rows.Next() {
		var album string
		if err := rows.Scan(&album); err != nil {
			return nil, err
		}
		albums = append(albums, album)
	}
	return albums, rows.Err()
}

// Genres returns the genres contained in the media library.
func (l *Library) Genres() ([]string, error) {
	return l.facetValues("genre")
}

// Years returns the years contained in the media library.
func (l *Library) Years() ([]int, error) {
	rows, err := l.db.Query(`
		SELECT DISTINCT year FROM media
		WHERE year IS NOT NULL AND year > 0
		ORDER BY year
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, err
		}
		years = append(years, year)
	}
	return years, rows.Err()
}

func (l *Library) facetValues(column string) ([]string, error) {
	rows, err := l.db.Query(`
		SELECT DISTINCT ` + column + ` FROM media
		WHERE ` + column + ` IS NOT NULL AND ` + column + ` <> ''
		ORDER BY ` + column + ` COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, rows.Err()
}

// MediaByArtist returns the media information by artist.
// Lists preserve storage order; callers re-sort as needed.
func (l *Library) MediaByArtist(artist string) ([]MediaInfo, error) {
	return l.selectMedia(`WHERE artist = ?`, artist)
}

// MediaByAlbum returns the media information by album.
func (l *Library) MediaByAlbum(album string) ([]MediaInfo, error) {
	return l.selectMedia(`WHERE album = ?`, album)
}

// MediaByArtistAndAlbum returns the media information by artist and album.
func (l *Library) MediaByArtistAndAlbum(artist, album string) ([]MediaInfo, error) {
	return l.selectMedia(`WHERE artist = ? AND album = ?`, artist, album)
}

// MediaByGenre returns the media information by genre.
func (l *Library) MediaByGenre(genre string) ([]MediaInfo, error) {
	return l.selectMedia(`WHERE genre = ?`, genre)
}

// MediaByYear returns the media information by year.
func (l *Library) MediaByYear(year int) ([]MediaInfo, error) {
	return l.selectMedia(`WHERE year = ?`, year)
}

// AllMedia returns all media information contained in the library.
func (l *Library) AllMedia() ([]MediaInfo, error) {
	return l.selectMedia(``)
}

// Streams returns all network streams contained in the library.
func (l *Library) Streams() ([]MediaInfo, error) {
	conds := make([]string, len(streamSchemes))
	args := make([]any, len(streamSchemes))
	for i, scheme := range streamSchemes {
		conds[i] = "filename LIKE ?"
		args[i] = scheme + "%"
	}
	return l.selectMedia(`WHERE `+strings.Join(conds, " OR "), args...)
}

func (l *Library) selectMedia(where string, args ...any) ([]MediaInfo, error) {
	rows, err := l.db.Query(`
		SELECT `+strings.Join(mediaColumns, ", ")+`
		FROM media `+where,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []MediaInfo
	for rows.Next() {
		info, err := scanMediaInfo(rows, SourceFile)
		if err != nil {
			return nil, err
		}
		media = append(media, *info)
	}
	return media, rows.Err()
}

// ArtistExists returns whether the artist exists in the media library.
// Matches are case-sensitive and exact.
func (l *Library) ArtistExists(artist string) (bool, error) {
	return l.facetExists(`SELECT EXISTS(SELECT 1 FROM media WHERE artist = ?)`, artist)
}

// AlbumExists returns whether the album exists in the media library.
func (l *Library) AlbumExists(album string) (bool, error) {
	return l.facetExists(`SELECT EXISTS(SELECT 1 FROM media WHERE album = ?)`, album)
}

// ArtistAndAlbumExists returns whether the artist and album pair exists
// in the media library.
func (l *Library) ArtistAndAlbumExists(artist, album string) (bool, error) {
	return l.facetExists(`SELECT EXISTS(SELECT 1 FROM media WHERE artist = ? AND album = ?)`, artist, album)
}

// GenreExists returns whether the genre exists in the media library.
func (l *Library) GenreExists(genre string) (bool, error) {
	return l.facetExists(`SELECT EXISTS(SELECT 1 FROM media WHERE genre = ?)`, genre)
}

// YearExists returns whether the year exists in the media library.
func (l *Library) YearExists(year int) (bool, error) {
	return l.facetExists(`SELECT EXISTS(SELECT 1 FROM media WHERE year = ?)`, year)
}

func (l *Library) facetExists(query string, args ...any) (bool, error) {
	var exists bool
	err := l.db.QueryRow(query, args...).Scan(&exists)
	return exists, err
}

// RemoveFromLibrary removes the record for info.Filename.
// Returns true if a row was actually removed; removing an absent
// filename is a no-op.
func (l *Library) RemoveFromLibrary(info MediaInfo) (bool, error) {
	src := SourceFromFilename(info.Filename)
	res, err := l.db.Exec(`DELETE FROM `+tableFor(src)+` WHERE filename = ?`, info.Filename)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
