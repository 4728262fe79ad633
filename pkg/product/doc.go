// Package product defines the catalog item model shared by the catalog,
// recommendation, and admin controllers. The remote store owns the data;
// values here are immutable snapshots of what it returned.
package product
