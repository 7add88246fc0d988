package store

// Package store persists a record of tasks declared through this tool.
//
// It is a write-through cache for the dashboard: the OS scheduler remains
// the source of truth for task state, and nothing in the scheduling path
// reads this store to make decisions.
