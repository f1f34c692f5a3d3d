// Package authsdk defines the wire types of the EventHive auth service and a
// small Go client for them. The server handlers and the end-to-end tests both
// use these types, so the two cannot drift apart silently.
package authsdk
