package jellyfin

import (
	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/domain"
)

// MapCategories converts Jellyfin library views to domain categories.
// Views of every collection type are kept; filtering happens at setup.
func MapCategories(items []Item) []domain.LibraryCategory {
	categories := make([]domain.LibraryCategory, 0, len(items))
	for _, item := range items {
		categories = append(categories, domain.LibraryCategory{
			ID:             item.ID,
			Name:           item.Name,
			CollectionType: item.CollectionType,
		})
	}
	return categories
}

// MapRecords converts Jellyfin items to domain media records
func MapRecords(items []Item) []domain.MediaRecord {
	records := make([]domain.MediaRecord, 0, len(items))
	for _, item := range items {
		records = append(records, mapRecord(item))
	}
	return records
}

// mapRecord converts a single Jellyfin item to a domain media record
func mapRecord(item Item) domain.MediaRecord {
	r := domain.MediaRecord{
		ID:                item.ID,
		Name:              item.Name,
		SeriesName:        item.SeriesName,
		Type:              item.Type,
		ParentID:          item.ParentID,
		PremiereDate:      item.PremiereDate,
		DateCreated:       item.DateCreated,
		RunTimeTicks:      item.RunTimeTicks,
		CommunityRating:   item.CommunityRating,
		ChildCount:        item.ChildCount,
		ParentIndexNumber: item.ParentIndexNumber,
		IndexNumber:       item.IndexNumber,
		ProductionYear:    item.ProductionYear,
		Genres:            item.Genres,
		Artists:           item.Artists,
		ProviderIDs:       item.ProviderIDs,
		Overview:          item.Overview,
		OfficialRating:    item.OfficialRating,
	}

	if item.Studios != nil {
		r.Studios = make([]domain.NamedRef, 0, len(item.Studios))
		for _, s := range item.Studios {
			r.Studios = append(r.Studios, domain.NamedRef{Name: s.Name, ID: s.ID})
		}
	}

	if item.RemoteTrailers != nil {
		r.RemoteTrailers = make([]domain.Trailer, 0, len(item.RemoteTrailers))
		for _, t := range item.RemoteTrailers {
			r.RemoteTrailers = append(r.RemoteTrailers, domain.Trailer{URL: t.URL, Name: t.Name})
		}
	}

	return r
}
