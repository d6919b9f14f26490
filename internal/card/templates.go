package card

import "github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/domain"

const defaultIcon = "mdi:arrow-down-bold"

// Display templates understood by the upcoming-media card
var (
	TVDefault = domain.Template{
		TitleDefault: "$title",
		Line1Default: "$release",
		Line2Default: "$number",
		Line3Default: "$episode",
		Line4Default: "Runtime: $runtime",
		Icon:         defaultIcon,
	}

	TVAlternate = domain.Template{
		TitleDefault: "$title",
		Line1Default: "$release • $number",
		Line2Default: "Average Runtime: $runtime",
		Line3Default: "$genres",
		Line4Default: "$rating • $studio",
		Icon:         defaultIcon,
	}

	MovieDefault = domain.Template{
		TitleDefault: "$title",
		Line1Default: "$release",
		Line2Default: "Runtime: $runtime",
		Line3Default: "$genres",
		Line4Default: "$rating • $studio",
		Icon:         defaultIcon,
	}

	MusicDefault = domain.Template{
		TitleDefault: "$title",
		Line1Default: "$studio • $release",
		Line2Default: "Runtime: $runtime",
		Line3Default: "$genres",
		Line4Default: "",
		Icon:         defaultIcon,
	}

	OtherDefault = domain.Template{
		TitleDefault: "$title",
		Line1Default: "$release",
		Line2Default: "Runtime: $runtime",
		Line3Default: "$genres",
		Line4Default: "$rating • $studio",
		Icon:         defaultIcon,
	}
)
