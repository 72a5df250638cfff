package podcast

import "strings"

// Filename derives the podcast artifact name from a digest text file name:
// a trailing ".txt" is replaced with ".mp3", any other name gets ".mp3"
// appended.
func Filename(digestFilename string) string {
	if strings.HasSuffix(digestFilename, ".txt") {
		return strings.TrimSuffix(digestFilename, ".txt") + ".mp3"
	}
	return digestFilename + ".mp3"
}
