package repository

import (
	"context"
	"gobarber/cmd/internal/domain/entity"
	"gorm.io/gorm"
	"slices"
)

// findUserSummaries loads the given users and their avatars with one query
// each, keyed by user id. Unknown ids are simply absent from the map.
func findUserSummaries(ctx context.Context, db *gorm.DB, ids []int) (map[int]*entity.UserSummary, error) {
	ids = uniqueIDs(ids)
	result := make(map[int]*entity.UserSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []*entity.User
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}

	avatars, err := findFiles(ctx, db, avatarIDs(users))
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		result[user.ID] = toUserSummary(user, avatars)
	}
	return result, nil
}

func findFiles(ctx context.Context, db *gorm.DB, ids []int) (map[int]*entity.File, error) {
	result := make(map[int]*entity.File, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var files []*entity.File
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&files).Error; err != nil {
		return nil, err
	}
	for _, f := range files {
		result[f.ID] = f
	}
	return result, nil
}

func toUserSummary(user *entity.User, avatars map[int]*entity.File) *entity.UserSummary {
	summary := &entity.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email}
	if user.AvatarID != nil {
		summary.Avatar = avatars[*user.AvatarID]
	}
	return summary
}

func avatarIDs(users []*entity.User) []int {
	var ids []int
	for _, u := range users {
		if u.AvatarID != nil {
			ids = append(ids, *u.AvatarID)
		}
	}
	return uniqueIDs(ids)
}

func uniqueIDs(ids []int) []int {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}
