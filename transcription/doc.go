// Package transcription defines the speech-to-text provider contract.
//
// The whisper subpackage implements it against an OpenAI-compatible
// /audio/transcriptions endpoint.
package transcription
