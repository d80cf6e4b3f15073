// Package extraction turns a PDF file into per-page text, document
// metadata and structured table lines. A primary pure-Go backend is
// tried first; pages it fails are retried with OCR, and a whole-document
// failure falls back to a content-stream backend. Only when every route
// yields no text does extraction fail.
package extraction
