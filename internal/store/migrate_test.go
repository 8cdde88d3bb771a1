// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package store

import (
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockMigrate implements migrateIface for unit tests.
type mockMigrate struct {
	upErr      error
	downErr    error
	version    uint
	dirty      bool
	versionErr error
	forceErr   error
	forced     int
	srcErr     error
	dbErr      error
}

func (m *mockMigrate) Up() error   { return m.upErr }
func (m *mockMigrate) Down() error { return m.downErr }
func (m *mockMigrate) Version() (uint, bool, error) {
	return m.version, m.dirty, m.versionErr
}
func (m *mockMigrate) Force(version int) error {
	m.forced = version
	return m.forceErr
}
func (m *mockMigrate) Close() (error, error) { return m.srcErr, m.dbErr }

func TestMigratorUp(t *testing.T) {
	t.Run("applies pending migrations", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		assert.NoError(t, m.Up())
	})

	t.Run("no change is not an error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{upErr: migrate.ErrNoChange}}
		assert.NoError(t, m.Up())
	})

	t.Run("failure is surfaced", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{upErr: oops.Errorf("dirty database")}}
		assert.Error(t, m.Up())
	})
}

func TestMigratorDown(t *testing.T) {
	t.Run("no change is not an error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{downErr: migrate.ErrNoChange}}
		assert.NoError(t, m.Down())
	})

	t.Run("failure is surfaced", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{downErr: oops.Errorf("locked")}}
		assert.Error(t, m.Down())
	})
}

func TestMigratorVersion(t *testing.T) {
	t.Run("reports the current version", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{version: 3, dirty: true}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(3), version)
		assert.True(t, dirty)
	})

	t.Run("nil version means a fresh database", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(0), version)
		assert.False(t, dirty)
	})
}

func TestMigratorForce(t *testing.T) {
	t.Run("sets the version", func(t *testing.T) {
		mock := &mockMigrate{}
		m := &Migrator{m: mock}
		require.NoError(t, m.Force(2))
		assert.Equal(t, 2, mock.forced)
	})

	t.Run("negative version is rejected", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		assert.Error(t, m.Force(-1))
	})
}

func TestMigratorClose(t *testing.T) {
	t.Run("clean close", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		assert.NoError(t, m.Close())
	})

	t.Run("source error is surfaced", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{srcErr: oops.Errorf("fs closed")}}
		assert.Error(t, m.Close())
	})

	t.Run("both errors are combined", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{srcErr: oops.Errorf("fs"), dbErr: oops.Errorf("db")}}
		err := m.Close()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fs")
		assert.Contains(t, err.Error(), "db")
	})
}
