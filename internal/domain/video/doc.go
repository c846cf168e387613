// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package video holds the catalogue model shared by ingestion, storage, feeds
// and playback. Records cross every storage and realtime boundary through
// FromRaw, which is the only place defaults are filled in.
package video
