// Package translation turns an SRT transcript into another language through
// a chat completion model.
package translation
