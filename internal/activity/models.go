// internal/activity/models.go

package activity

// Activity is a hike from the tour catalog. The catalog is imported
// elsewhere; this service only reads it.
type Activity struct {
    ID               int64    `json:"id" db:"id"`
    Title            string   `json:"title" db:"title"`
    TeaserText       *string  `json:"teaser_text" db:"teaser_text"`
    Description      *string  `json:"description" db:"description"`
    Category         *string  `json:"category" db:"category"`
    Difficulty       int      `json:"difficulty" db:"difficulty"`
    LandscapeRating  *int     `json:"landscape_rating" db:"landscape_rating"`
    ExperienceRating *int     `json:"experience_rating" db:"experience_rating"`
    StaminaRating    *int     `json:"stamina_rating" db:"stamina_rating"`
    Length           *float64 `json:"length" db:"length"`
    Ascent           *int     `json:"ascent" db:"ascent"`
    Descent          *int     `json:"descent" db:"descent"`
    DurationMin      *int     `json:"duration_min" db:"duration_min"`
    MinAltitude      *int     `json:"min_altitude" db:"min_altitude"`
    MaxAltitude      *int     `json:"max_altitude" db:"max_altitude"`
    PointLat         *float64 `json:"point_lat" db:"point_lat"`
    PointLon         *float64 `json:"point_lon" db:"point_lon"`
    IsWinter         bool     `json:"is_winter" db:"is_winter"`
    IsClosed         bool     `json:"is_closed" db:"is_closed"`
    PrimaryRegion    *string  `json:"primary_region" db:"primary_region"`
}

// Open reports whether the activity can be proposed
func (a *Activity) Open() bool {
    return !a.IsClosed
}

// Region returns the primary region or the empty string
func (a *Activity) Region() string {
    if a.PrimaryRegion == nil {
        return ""
    }
    return *a.PrimaryRegion
}
