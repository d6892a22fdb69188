package content

import "strings"

// RecommendVideos picks videos whose title, description or tags mention
// one of the learner's weak areas (case-insensitive substring match).
// With no weak areas every video is relevant; with no match the first
// three videos are returned so the results view is never empty.
func RecommendVideos(videos []Video, weakAreas []string) []Video {
	if len(videos) == 0 {
		return []Video{}
	}
	if len(weakAreas) == 0 {
		return videos
	}

	var recommended []Video
	for _, v := range videos {
		if videoMatches(v, weakAreas) {
			recommended = append(recommended, v)
		}
	}
	if len(recommended) == 0 {
		if len(videos) > 3 {
			return videos[:3]
		}
		return videos
	}
	return recommended
}

func videoMatches(v Video, weakAreas []string) bool {
	title := strings.ToLower(v.Title)
	desc := strings.ToLower(v.Description)
	tags := make([]string, len(v.Tags))
	for i, t := range v.Tags {
		tags[i] = strings.ToLower(t)
	}

	for _, area := range weakAreas {
		needle := strings.ToLower(area)
		if strings.Contains(title, needle) || strings.Contains(desc, needle) {
			return true
		}
		for _, tag := range tags {
			if strings.Contains(tag, needle) {
				return true
			}
		}
	}
	return false
}
