// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package feed

import (
	"strings"
	"time"

	"github.com/ManuGH/vidshare/internal/domain/video"
	"github.com/ManuGH/vidshare/internal/store"
)

// DemoIDPrefix marks records that come from the built-in dataset.
const DemoIDPrefix = "demo-"

const day = 24 * time.Hour

// demoRows is the dataset shown when storage is empty or unreachable.
// age is subtracted from the load time to produce created_at.
var demoRows = []struct {
	raw video.Raw
	age time.Duration
}{
	{video.Raw{
		ID:           DemoIDPrefix + "1",
		Title:        "Amazing Live Concert Performance 2024",
		Description:  "An incredible live performance from the biggest artists",
		ThumbnailURL: "https://images.unsplash.com/photo-1470229722913-7c0e2dbbafd3?w=800",
		SourceType:   "link",
		URL:          "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4",
		Category:     "music",
		Views:        1250000,
		Likes:        45000,
		UserID:       "user1",
		Username:     "Music Channel",
		UserAvatar:   "https://api.dicebear.com/7.x/avataaars/svg?seed=music",
	}, day},
	{video.Raw{
		ID:           DemoIDPrefix + "2",
		Title:        "Premier League Highlights - Best Goals",
		Description:  "Top 10 goals from this week",
		ThumbnailURL: "https://images.unsplash.com/photo-1574629810360-7efbbe195018?w=800",
		SourceType:   "link",
		URL:          "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4",
		Category:     "sport",
		Views:        890000,
		Likes:        32000,
		UserID:       "user2",
		Username:     "Sports Daily",
		UserAvatar:   "https://api.dicebear.com/7.x/avataaars/svg?seed=sports",
	}, 2 * day},
	{video.Raw{
		ID:           DemoIDPrefix + "3",
		Title:        "Trending Music Video - New Release",
		Description:  "Official music video for the latest hit",
		ThumbnailURL: "https://images.unsplash.com/photo-1493225457124-a3eb161ffa5f?w=800",
		SourceType:   "embed",
		URL:          "https://www.youtube.com/embed/dQw4w9WgXcQ",
		Category:     "music",
		Views:        5600000,
		Likes:        234000,
		UserID:       "user3",
		Username:     "VEVO",
		UserAvatar:   "https://api.dicebear.com/7.x/avataaars/svg?seed=vevo",
	}, 3 * day},
	{video.Raw{
		ID:           DemoIDPrefix + "4",
		Title:        "Live Football Match - Championship Final",
		Description:  "Watch the championship final live",
		ThumbnailURL: "https://images.unsplash.com/photo-1508098682722-e99c43a406b2?w=800",
		SourceType:   "link",
		URL:          "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerBlazes.mp4",
		Category:     "live",
		Views:        125000,
		Likes:        8900,
		UserID:       "user4",
		Username:     "Live Sports",
		UserAvatar:   "https://api.dicebear.com/7.x/avataaars/svg?seed=live",
	}, 0},
	{video.Raw{
		ID:           DemoIDPrefix + "5",
		Title:        "Blockbuster Movie Trailer 2024",
		Description:  "Official trailer for the most anticipated movie",
		ThumbnailURL: "https://images.unsplash.com/photo-1489599849927-2ee91cede3ba?w=800",
		SourceType:   "link",
		URL:          "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerEscapes.mp4",
		Category:     "movies",
		Views:        3400000,
		Likes:        156000,
		UserID:       "user5",
		Username:     "MovieTrailers",
		UserAvatar:   "https://api.dicebear.com/7.x/avataaars/svg?seed=movies",
	}, 4 * day},
	{video.Raw{
		ID:           DemoIDPrefix + "6",
		Title:        "Acoustic Session - Unplugged Live",
		Description:  "Beautiful acoustic performance",
		ThumbnailURL: "https://images.unsplash.com/photo-1511671782779-c97d3d27a1d4?w=800",
		SourceType:   "link",
		URL:          "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerFun.mp4",
		Category:     "music",
		Views:        780000,
		Likes:        45000,
		UserID:       "user6",
		Username:     "Acoustic Vibes",
		UserAvatar:   "https://api.dicebear.com/7.x/avataaars/svg?seed=acoustic",
	}, 5 * day},
}

// DemoVideos returns the built-in dataset, newest first, stamped relative
// to now.
func DemoVideos(now time.Time) []video.Record {
	out := make([]video.Record, 0, len(demoRows))
	for _, row := range demoRows {
		raw := row.raw
		raw.CreatedAt = now.Add(-row.age)
		out = append(out, video.FromRaw(raw))
	}
	return store.Select(out, store.Query{Order: store.OrderNewest, Limit: len(out)})
}

// DemoVideo looks up one demo record by id.
func DemoVideo(id string, now time.Time) (video.Record, bool) {
	if !IsDemoID(id) {
		return video.Record{}, false
	}
	for _, rec := range DemoVideos(now) {
		if rec.ID == id {
			return rec, true
		}
	}
	return video.Record{}, false
}

// IsDemoID reports whether id belongs to the built-in dataset.
func IsDemoID(id string) bool {
	return strings.HasPrefix(id, DemoIDPrefix)
}
