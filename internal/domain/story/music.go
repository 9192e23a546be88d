package story

// DefaultMusicVolume 背景音乐默认音量
const DefaultMusicVolume = 0.2

// defaultMusicTracks 语气到背景音乐曲目的静态映射
var defaultMusicTracks = map[Tone]string{
	ToneFriendly:   "/Friendly.mp3",
	ToneCalm:       "/Calm.mp3",
	ToneEnergetic:  "/Energetic.mp3",
	ToneWise:       "/Wise.mp3",
	ToneMysterious: "/Mysterious.mp3",
	ToneCheerful:   "/Cheerful.mp3",
	ToneDramatic:   "/Dramatic.mp3",
}

// MusicTrackForTone 查找语气对应的背景音乐。
// overrides 优先（来自配置），未命中再查默认表；都没有返回空串，表示无音乐。
func MusicTrackForTone(tone Tone, overrides map[string]string) string {
	if track, ok := overrides[string(tone)]; ok {
		return track
	}
	return defaultMusicTracks[tone]
}
