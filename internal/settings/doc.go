// Package settings provides the key-value settings store used by the
// rest of the application.
//
// The store is a thin repository over the settings table, which is
// created by the initial schema migration. It holds installation-scoped
// values (schema flags, feature toggles, instance identifiers) that must
// survive restarts but do not warrant their own tables.
//
// Usage:
//
//	store := settings.NewStore(mgr.Handle())
//	if err := store.Set(ctx, "instance_id", id); err != nil { ... }
//	v, err := store.Get(ctx, "instance_id")
package settings
