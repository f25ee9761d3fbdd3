// Package readwise implements the export client against the Readwise
// v2 export API. It pages through the archive with the server-issued
// continuation cursor, throttles proactively, and retries rate-limited
// pages with bounded backoff so retrieval is complete, not best-effort.
package readwise
