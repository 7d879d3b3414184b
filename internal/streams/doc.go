// Package streams fetches stream descriptors for resolved sources and picks
// the best audio-only encoding.
//
// A Provider lists every encoding a source offers and opens byte streams for
// them; YouTube is the production provider. Service applies a per-call
// deadline, converts unplayable sources into "no stream" results, and
// returns transport faults as *FetchError.
//
// Selection rule: among audio-only encodings pick the highest bitrate
// (Bitrate, or AverageBitrate when Bitrate is unreported). Ties go to the
// lowest itag, then to the lexically smallest MIME type, so repeated runs
// always choose the same encoding.
package streams
