// Package services contains the application services of the library client.
// CatalogService covers the resource collections (genres, libraries, books,
// members, loans) on top of the HTTP API client.
package services
