// Package web is the HTTP surface of the pipeline: the upload form, the
// download route and the JSON translations API, all on Gin.
//
// Handlers never run pipeline steps themselves. They check the form, hand
// the upload to a Runner and render what comes back.
package web
