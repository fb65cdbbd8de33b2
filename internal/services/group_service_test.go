package services

import (
	"testing"

	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/testutil"
)

func TestCreateGroup(t *testing.T) {
	t.Run("with_permissions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)
		perm := testutil.CreateTestPermission(t, db)

		group, err := svc.CreateGroup("Finance Admins", []string{perm.Codename, "no_such_codename"})
		testutil.AssertNoError(t, err)

		if len(group.Permissions) != 1 || group.Permissions[0].ID != perm.ID {
			t.Errorf("expected the known permission attached, got %d", len(group.Permissions))
		}
	})

	t.Run("duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		_, err := svc.CreateGroup("Dup Group", nil)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateGroup("Dup Group", nil)
		testutil.AssertAppError(t, err, "DUPLICATE_GROUP")
	})

	t.Run("blank_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		_, err := svc.CreateGroup("   ", nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestListGroups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGroupService(db)

	_, err := svc.CreateGroup("Listing Alpha", nil)
	testutil.AssertNoError(t, err)
	_, err = svc.CreateGroup("Listing Beta", nil)
	testutil.AssertNoError(t, err)

	page, err := svc.ListGroups("listing", pagination.PageRequest{})
	testutil.AssertNoError(t, err)

	if page.TotalItems != 2 {
		t.Fatalf("expected 2 groups matching the search, got %d", page.TotalItems)
	}
	if page.Data[0].Name != "Listing Alpha" {
		t.Errorf("expected name ascending order, got %q first", page.Data[0].Name)
	}
}

func TestUpdateGroup(t *testing.T) {
	t.Run("replaces_permission_set", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)
		old := testutil.CreateTestPermission(t, db)
		next := testutil.CreateTestPermission(t, db)

		group, err := svc.CreateGroup("Perm Swap", []string{old.Codename})
		testutil.AssertNoError(t, err)

		codenames := []string{next.Codename}
		updated, err := svc.UpdateGroup(group.ID, nil, &codenames)
		testutil.AssertNoError(t, err)

		if len(updated.Permissions) != 1 || updated.Permissions[0].ID != next.ID {
			t.Errorf("expected only the new permission, got %d", len(updated.Permissions))
		}
	})

	t.Run("rename_to_taken_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		_, err := svc.CreateGroup("Rename Taken", nil)
		testutil.AssertNoError(t, err)
		group, err := svc.CreateGroup("Rename Source", nil)
		testutil.AssertNoError(t, err)

		taken := "Rename Taken"
		_, err = svc.UpdateGroup(group.ID, &taken, nil)
		testutil.AssertAppError(t, err, "DUPLICATE_GROUP")
	})
}

func TestDeleteGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGroupService(db)
	user := testutil.CreateTestUser(t, db)

	group, err := svc.CreateGroup("Delete Me", nil)
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, db.Model(user).Association("Groups").Append(group))

	deleted, err := svc.DeleteGroup(group.ID)
	testutil.AssertNoError(t, err)
	if deleted.Name != "Delete Me" {
		t.Errorf("expected the deleted group returned, got %q", deleted.Name)
	}

	_, err = svc.GetGroupByID(group.ID)
	testutil.AssertAppError(t, err, "GROUP_NOT_FOUND")

	// Members survive, only the membership edge is removed.
	var u models.User
	testutil.AssertNoError(t, db.First(&u, "id = ?", user.ID).Error)
	var edges int64
	testutil.AssertNoError(t, db.Table("user_groups").Where("group_id = ?", group.ID).Count(&edges).Error)
	if edges != 0 {
		t.Errorf("expected no membership edges left, got %d", edges)
	}
}

func TestBulkDeleteGroups(t *testing.T) {
	t.Run("deletes_all_listed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		a, err := svc.CreateGroup("Bulk A", nil)
		testutil.AssertNoError(t, err)
		b, err := svc.CreateGroup("Bulk B", nil)
		testutil.AssertNoError(t, err)

		n, err := svc.BulkDeleteGroups([]string{a.ID, b.ID})
		testutil.AssertNoError(t, err)
		if n != 2 {
			t.Errorf("expected 2 deletions, got %d", n)
		}

		_, err = svc.GetGroupByID(a.ID)
		testutil.AssertAppError(t, err, "GROUP_NOT_FOUND")
		_, err = svc.GetGroupByID(b.ID)
		testutil.AssertAppError(t, err, "GROUP_NOT_FOUND")
	})

	t.Run("ignores_unknown_ids", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		a, err := svc.CreateGroup("Bulk Partial", nil)
		testutil.AssertNoError(t, err)

		n, err := svc.BulkDeleteGroups([]string{a.ID, "b7e9a3a2-0000-0000-0000-000000000000"})
		testutil.AssertNoError(t, err)
		if n != 1 {
			t.Errorf("expected 1 deletion, got %d", n)
		}
	})

	t.Run("empty_list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		_, err := svc.BulkDeleteGroups(nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("nothing_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)

		_, err := svc.BulkDeleteGroups([]string{"b7e9a3a2-0000-0000-0000-000000000000"})
		testutil.AssertAppError(t, err, "GROUP_NOT_FOUND")
	})
}
