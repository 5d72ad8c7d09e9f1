package jsonscript

// Package jsonscript transforms streams of JSON documents with scripts.
//
// The package is organized into several sub-packages:
//
// - document: the in-memory value model for one JSON document, with paths
// - token: core token types shared by decoders and encoders
// - encoding/json: JSON decoder and encoder
// - encoding/csv: CSV decoder
// - stream: record source and sink, one document at a time
// - engine: runs a script against a source and a sink
// - luascript: scripts written in Lua
//
// Records flow through a run like this:
//
//    decode -> record source -> script (get_next / emit) -> record sink -> encode
//
// The script is in charge of the loop: it pulls each record, mutates it or
// builds new values, and emits any number of records, possibly after the
// input is exhausted (e.g. to emit a total).  Only the record being worked on
// and whatever the script keeps are held in memory, so inputs can be
// arbitrarily long.
//
// The CLI utility is in the directory cmd/jsonscript. You can install it with:
//
//  go install github.com/arnodel/jsonscript/cmd/jsonscript
//
// Example:
//
//  jsonscript -e 'for doc in records() do doc.seen = true; emit(doc) end' < in.json
