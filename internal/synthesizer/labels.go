package synthesizer

// OverlayLabels returns a new map holding base with override applied on top.
// Keys present in both take the value from override. Neither input is modified.
func OverlayLabels(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
