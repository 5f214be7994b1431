package view

// cardArt maps card names to face image files. File names keep the case of
// the asset set, which is not consistent.
var cardArt = map[string]string{
	"attack_01":   "attack_01[face,4].png",
	"attack_02":   "attack_02[face,2].png",
	"attack_05":   "attack_05[face,2].png",
	"attack_06":   "attack_06[face,2].png",
	"attack_07":   "attack_07[face,2].png",
	"attack_08":   "attack_08[face,2].png",
	"attack_10":   "Attack_10[face,1].png",
	"attack_11":   "Attack_11[face,1].png",
	"draw_01":     "draw_01[face,6].png",
	"draw_06":     "draw_06[face,4].png",
	"draw_06b":    "draw_06b[face,2].png",
	"draw_08":     "draw_08[face,2].png",
	"draw_10":     "Draw_10[face,1].png",
	"draw_11":     "Draw_11[face,1].png",
	"generic_01":  "generic_01[face,8].png",
	"generic_02":  "generic_02[face,3].png",
	"generic_04":  "generic_04[face,3].png",
	"generic_04c": "generic_04c[face,3].png",
	"generic_04d": "generic_04d[face,3].png",
	"generic_06":  "generic_06[face,7].png",
	"generic_07":  "generic_07[face,9].png",
	"power_04":    "power_04[face,2].png",
	"power_05":    "power_05[face,4].png",
	"power_05b":   "power_05b[face,4].png",
	"power_06":    "power_06[face,2].png",
	"power_07":    "power_07[face,2].png",
	"power_08":    "power_08[face,2].png",
	"shields_01":  "shields_01[face,4].png",
	"shields_02":  "shields_02[face,2].png",
	"shields_05":  "shields_05[face,2].png",
	"shields_06":  "shields_06[face,2].png",
	"shields_07":  "shields_07[face,2].png",
	"shields_08":  "shields_08[face,2].png",
	"shields_10":  "Shields_10[face,1].png",
	"shields_11":  "Shields_11[face,1].png",
}

// Art returns the image path for a card, or "" for cards without art.
func Art(name string) string {
	if f, ok := cardArt[name]; ok {
		return "cards/" + f
	}
	return ""
}
