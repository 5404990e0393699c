package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/abdel2584/hisn-moslim-3/internal/model"
	"github.com/abdel2584/hisn-moslim-3/internal/provider/alquran"
)

const (
	quranMetaKey = "meta"
	maxAyah      = 6236
)

type QuranClient interface {
	Surahs(ctx context.Context) ([]model.SurahMeta, []byte, error)
	Surah(ctx context.Context, number int) (model.SurahDetail, error)
	Tafsir(ctx context.Context, ayahNumber int) (alquran.Tafsir, error)
	Search(ctx context.Context, query string) ([]alquran.SearchMatch, error)
}

type LastRead struct {
	Surah  int       `json:"surah"`
	Name   string    `json:"name"`
	ReadAt time.Time `json:"readAt"`
}

type QuranService struct {
	DB     *sql.DB
	Client QuranClient
}

// ListSurahs returns the surah index. When the network fails a previously
// cached index is served and offline is true.
func (s *QuranService) ListSurahs(ctx context.Context) (surahs []model.SurahMeta, offline bool, err error) {
	surahs, body, err := s.Client.Surahs(ctx)
	if err == nil {
		if cerr := putQuranCache(s.DB, quranMetaKey, body); cerr != nil {
			log.Warn().Err(cerr).Msg("could not cache surah index")
		}
		return surahs, false, nil
	}
	raw, ok, cerr := getQuranCache(s.DB, quranMetaKey)
	if cerr != nil || !ok {
		return nil, false, err
	}
	cached, derr := alquran.DecodeSurahs(raw)
	if derr != nil {
		log.Warn().Err(derr).Msg("cached surah index unreadable")
		return nil, false, err
	}
	log.Warn().Err(err).Msg("serving cached surah index")
	return cached, true, nil
}

// ReadSurah fetches a surah, caching it for offline reading, and records it
// as the last one read.
func (s *QuranService) ReadSurah(ctx context.Context, number int, now time.Time) (model.SurahDetail, bool, error) {
	key := fmt.Sprintf("surah:%d", number)
	detail, err := s.Client.Surah(ctx, number)
	offline := false
	if err != nil {
		raw, ok, cerr := getQuranCache(s.DB, key)
		if cerr != nil || !ok {
			return model.SurahDetail{}, false, err
		}
		if derr := json.Unmarshal(raw, &detail); derr != nil {
			return model.SurahDetail{}, false, err
		}
		log.Warn().Err(err).Int("surah", number).Msg("serving cached surah")
		offline = true
	} else if data, merr := json.Marshal(detail); merr == nil {
		if cerr := putQuranCache(s.DB, key, data); cerr != nil {
			log.Warn().Err(cerr).Int("surah", number).Msg("could not cache surah")
		}
	}
	if err := putRecord(s.DB, RecordQuranLastRead, LastRead{Surah: detail.Number, Name: detail.Name, ReadAt: now}); err != nil {
		return detail, offline, err
	}
	return detail, offline, nil
}

func (s *QuranService) Tafsir(ctx context.Context, ayah int) (alquran.Tafsir, error) {
	if err := validAyah(ayah); err != nil {
		return alquran.Tafsir{}, err
	}
	return s.Client.Tafsir(ctx, ayah)
}

func (s *QuranService) Search(ctx context.Context, query string) ([]alquran.SearchMatch, error) {
	return s.Client.Search(ctx, query)
}

func (s *QuranService) LastRead() (*LastRead, error) {
	raw, ok, err := getRecord(s.DB, RecordQuranLastRead)
	if err != nil || !ok {
		return nil, err
	}
	var lr LastRead
	if err := json.Unmarshal([]byte(raw), &lr); err != nil {
		log.Warn().Err(err).Str("record", RecordQuranLastRead).Msg("corrupt record, ignoring")
		return nil, nil
	}
	return &lr, nil
}

func (s *QuranService) Bookmarks() ([]int, error) {
	return loadBookmarks(s.DB)
}

// AddBookmark reports whether the ayah was newly added.
func (s *QuranService) AddBookmark(ayah int) (bool, error) {
	if err := validAyah(ayah); err != nil {
		return false, err
	}
	marks, err := loadBookmarks(s.DB)
	if err != nil {
		return false, err
	}
	i := sort.SearchInts(marks, ayah)
	if i < len(marks) && marks[i] == ayah {
		return false, nil
	}
	marks = append(marks, 0)
	copy(marks[i+1:], marks[i:])
	marks[i] = ayah
	return true, putRecord(s.DB, RecordQuranBookmarks, marks)
}

// RemoveBookmark reports whether the ayah was bookmarked.
func (s *QuranService) RemoveBookmark(ayah int) (bool, error) {
	marks, err := loadBookmarks(s.DB)
	if err != nil {
		return false, err
	}
	i := sort.SearchInts(marks, ayah)
	if i >= len(marks) || marks[i] != ayah {
		return false, nil
	}
	marks = append(marks[:i], marks[i+1:]...)
	return true, putRecord(s.DB, RecordQuranBookmarks, marks)
}

func validAyah(ayah int) error {
	if ayah < 1 || ayah > maxAyah {
		return fmt.Errorf("ayah number must be between 1 and %d", maxAyah)
	}
	return nil
}

func loadBookmarks(db *sql.DB) ([]int, error) {
	raw, ok, err := getRecord(db, RecordQuranBookmarks)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []int{}, nil
	}
	var marks []int
	if err := json.Unmarshal([]byte(raw), &marks); err != nil {
		log.Warn().Err(err).Str("record", RecordQuranBookmarks).Msg("corrupt record, starting empty")
		return []int{}, nil
	}
	sort.Ints(marks)
	out := marks[:0]
	for _, m := range marks {
		if len(out) > 0 && out[len(out)-1] == m {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func getQuranCache(db *sql.DB, key string) ([]byte, bool, error) {
	var payload string
	err := db.QueryRow(`SELECT payload FROM quran_cache WHERE key = ?`, key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query quran cache %q: %w", key, err)
	}
	return []byte(payload), true, nil
}

func putQuranCache(db *sql.DB, key string, payload []byte) error {
	_, err := db.Exec(`
INSERT INTO quran_cache(key, payload, fetched_at)
VALUES(?, ?, ?)
ON CONFLICT(key) DO UPDATE SET payload=excluded.payload, fetched_at=excluded.fetched_at
`, key, string(payload), time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert quran cache %q: %w", key, err)
	}
	return nil
}
