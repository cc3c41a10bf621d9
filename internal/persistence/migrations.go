package persistence

// Migration rules, applied sequentially until the document reaches
// CurrentVersion. Each function takes and returns a generic JSON document
// (map[string]any as produced by encoding/json) so later steps never need
// to know the shape an earlier version's raw file had.

// migrateV1ToV2 synthesizes a single track named "Default" from a v1
// document's top-level segments array, copying segments verbatim.
func migrateV1ToV2(doc map[string]any) map[string]any {
	segments, _ := doc["segments"].([]any)
	delete(doc, "segments")
	doc["tracks"] = []any{
		map[string]any{
			"name":     "Default",
			"language": "",
			"segments": segments,
		},
	}
	doc["active_track_index"] = 0
	doc["version"] = 2
	return doc
}

// migrateV2ToV3 adds audio_start_ms/audio_duration_ms (default 0) to every
// track.
func migrateV2ToV3(doc map[string]any) map[string]any {
	tracks, _ := doc["tracks"].([]any)
	for _, raw := range tracks {
		t, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := t["audio_start_ms"]; !ok {
			t["audio_start_ms"] = int64(0)
		}
		if _, ok := t["audio_duration_ms"]; !ok {
			t["audio_duration_ms"] = int64(0)
		}
	}
	doc["version"] = 3
	return doc
}

// migrateV3ToV4 adds video_clips, text_overlays (both empty) and a default
// per-segment volume of 1.0.
func migrateV3ToV4(doc map[string]any) map[string]any {
	if _, ok := doc["video_clips"]; !ok {
		doc["video_clips"] = []any{}
	}
	if _, ok := doc["text_overlays"]; !ok {
		doc["text_overlays"] = []any{}
	}
	if _, ok := doc["image_overlays"]; !ok {
		doc["image_overlays"] = []any{}
	}
	tracks, _ := doc["tracks"].([]any)
	for _, raw := range tracks {
		t, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		segments, _ := t["segments"].([]any)
		for _, rawSeg := range segments {
			seg, ok := rawSeg.(map[string]any)
			if !ok {
				continue
			}
			if _, ok := seg["volume"]; !ok {
				seg["volume"] = float32(1.0)
			}
		}
	}
	doc["version"] = 4
	return doc
}

// migrateToCurrent applies every migration needed to bring doc up to
// CurrentVersion, given its detected version.
func migrateToCurrent(doc map[string]any, version int) map[string]any {
	if version < 2 {
		doc = migrateV1ToV2(doc)
	}
	if version < 3 {
		doc = migrateV2ToV3(doc)
	}
	if version < 4 {
		doc = migrateV3ToV4(doc)
	}
	return doc
}
