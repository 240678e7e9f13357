package service

import "gorm.io/gorm"

// Page is one page of a list query.
type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}

// Pages is the number of pages needed for Total items.
func (p Page[T]) Pages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// 分页参数
func normalizePage(page, perPage, def int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 || perPage > 100 {
		perPage = def
	}
	return page, perPage
}

// paginate counts base and then loads one ordered page of it.
func paginate[T any](base *gorm.DB, page, perPage int, order string, preloads ...string) (Page[T], error) {
	out := Page[T]{Page: page, PerPage: perPage}

	if err := base.Session(&gorm.Session{}).Count(&out.Total).Error; err != nil {
		return out, err
	}

	q := base.Session(&gorm.Session{}).Order(order).Limit(perPage).Offset((page - 1) * perPage)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	items := make([]T, 0, perPage)
	if err := q.Find(&items).Error; err != nil {
		return out, err
	}
	out.Items = items
	return out, nil
}

// ownedRoomIDs is a subquery of room ids belonging to userID.
func ownedRoomIDs(db *gorm.DB, userID uint) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).Table("rooms").Select("id").Where("user_id = ?", userID)
}
