// Command webmfix repairs the Duration of WebM recordings produced by
// browser capture and prints what a file's segment header contains.
//
//	webmfix fix recording.webm            # writes recording.fixed.webm
//	webmfix fix --in-place *.webm
//	webmfix fix --duration 1m30s -o out.webm capture.webm
//	webmfix inspect --tree recording.webm
package main
