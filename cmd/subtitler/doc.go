// Command subtitler transcribes the audio of a video and translates the
// subtitles. It serves the web form and JSON API or runs one translation
// from the command line.
package main
