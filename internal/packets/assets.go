package packets

import "github.com/hytale-oss/gameserver/internal/codec"

// The ASSETS category packets below are catalogue pushes sent with an
// empty payload during the post-RequestAssets burst (see
// internal/session): one per asset table. Real deployments would carry
// per-table rows; the registry is open to registering a richer payload
// later without touching the bring-up flow or the burst order.

func assetTableDescriptor(name string, id uint32, compressed bool) *Descriptor {
	return &Descriptor{
		Name:         name,
		ID:           id,
		IsCompressed: compressed,
		MaxSize:      16777216,
		Category:     CategoryAssets,
	}
}

type UpdateBlockTypes struct{}

var updateBlockTypesDescriptor = assetTableDescriptor("UpdateBlockTypes", 40, true)

func (UpdateBlockTypes) Descriptor() *Descriptor { return updateBlockTypesDescriptor }

var updateBlockTypesCodec = codec.NewStruct[UpdateBlockTypes]()

type UpdateBlockHitboxes struct{}

var updateBlockHitboxesDescriptor = assetTableDescriptor("UpdateBlockHitboxes", 41, false)

func (UpdateBlockHitboxes) Descriptor() *Descriptor { return updateBlockHitboxesDescriptor }

var updateBlockHitboxesCodec = codec.NewStruct[UpdateBlockHitboxes]()

type UpdateBlockSoundSets struct{}

var updateBlockSoundSetsDescriptor = assetTableDescriptor("UpdateBlockSoundSets", 42, false)

func (UpdateBlockSoundSets) Descriptor() *Descriptor { return updateBlockSoundSetsDescriptor }

var updateBlockSoundSetsCodec = codec.NewStruct[UpdateBlockSoundSets]()

type UpdateBlockParticleSets struct{}

var updateBlockParticleSetsDescriptor = assetTableDescriptor("UpdateBlockParticleSets", 44, false)

func (UpdateBlockParticleSets) Descriptor() *Descriptor { return updateBlockParticleSetsDescriptor }

var updateBlockParticleSetsCodec = codec.NewStruct[UpdateBlockParticleSets]()

type UpdateBlockBreakingDecals struct{}

var updateBlockBreakingDecalsDescriptor = assetTableDescriptor("UpdateBlockBreakingDecals", 45, false)

func (UpdateBlockBreakingDecals) Descriptor() *Descriptor { return updateBlockBreakingDecalsDescriptor }

var updateBlockBreakingDecalsCodec = codec.NewStruct[UpdateBlockBreakingDecals]()

type UpdateBlockSets struct{}

var updateBlockSetsDescriptor = assetTableDescriptor("UpdateBlockSets", 46, false)

func (UpdateBlockSets) Descriptor() *Descriptor { return updateBlockSetsDescriptor }

var updateBlockSetsCodec = codec.NewStruct[UpdateBlockSets]()

type UpdateEntityEffects struct{}

var updateEntityEffectsDescriptor = assetTableDescriptor("UpdateEntityEffects", 51, false)

func (UpdateEntityEffects) Descriptor() *Descriptor { return updateEntityEffectsDescriptor }

var updateEntityEffectsCodec = codec.NewStruct[UpdateEntityEffects]()

type UpdateFieldcraftCategories struct{}

var updateFieldcraftCategoriesDescriptor = assetTableDescriptor("UpdateFieldcraftCategories", 58, false)

func (UpdateFieldcraftCategories) Descriptor() *Descriptor { return updateFieldcraftCategoriesDescriptor }

var updateFieldcraftCategoriesCodec = codec.NewStruct[UpdateFieldcraftCategories]()

type UpdateEnvironments struct{}

var updateEnvironmentsDescriptor = assetTableDescriptor("UpdateEnvironments", 61, false)

func (UpdateEnvironments) Descriptor() *Descriptor { return updateEnvironmentsDescriptor }

var updateEnvironmentsCodec = codec.NewStruct[UpdateEnvironments]()

type UpdateAmbienceFX struct{}

var updateAmbienceFXDescriptor = assetTableDescriptor("UpdateAmbienceFX", 62, false)

func (UpdateAmbienceFX) Descriptor() *Descriptor { return updateAmbienceFXDescriptor }

var updateAmbienceFXCodec = codec.NewStruct[UpdateAmbienceFX]()

type UpdateFluidFX struct{}

var updateFluidFXDescriptor = assetTableDescriptor("UpdateFluidFX", 63, false)

func (UpdateFluidFX) Descriptor() *Descriptor { return updateFluidFXDescriptor }

var updateFluidFXCodec = codec.NewStruct[UpdateFluidFX]()

type UpdateInteractions struct{}

var updateInteractionsDescriptor = assetTableDescriptor("UpdateInteractions", 66, false)

func (UpdateInteractions) Descriptor() *Descriptor { return updateInteractionsDescriptor }

var updateInteractionsCodec = codec.NewStruct[UpdateInteractions]()

type TrackOrUpdateObjective struct{}

var trackOrUpdateObjectiveDescriptor = assetTableDescriptor("TrackOrUpdateObjective", 69, false)

func (TrackOrUpdateObjective) Descriptor() *Descriptor { return trackOrUpdateObjectiveDescriptor }

var trackOrUpdateObjectiveCodec = codec.NewStruct[TrackOrUpdateObjective]()

type UntrackObjective struct{}

var untrackObjectiveDescriptor = assetTableDescriptor("UntrackObjective", 70, false)

func (UntrackObjective) Descriptor() *Descriptor { return untrackObjectiveDescriptor }

var untrackObjectiveCodec = codec.NewStruct[UntrackObjective]()

type UpdateEntityStatTypes struct{}

var updateEntityStatTypesDescriptor = assetTableDescriptor("UpdateEntityStatTypes", 72, false)

func (UpdateEntityStatTypes) Descriptor() *Descriptor { return updateEntityStatTypesDescriptor }

var updateEntityStatTypesCodec = codec.NewStruct[UpdateEntityStatTypes]()

type UpdateEntityUiComponents struct{}

var updateEntityUiComponentsDescriptor = assetTableDescriptor("UpdateEntityUiComponents", 73, false)

func (UpdateEntityUiComponents) Descriptor() *Descriptor { return updateEntityUiComponentsDescriptor }

var updateEntityUiComponentsCodec = codec.NewStruct[UpdateEntityUiComponents]()

type UpdateHitboxCollisionConfig struct{}

var updateHitboxCollisionConfigDescriptor = assetTableDescriptor("UpdateHitboxCollisionConfig", 74, false)

func (UpdateHitboxCollisionConfig) Descriptor() *Descriptor { return updateHitboxCollisionConfigDescriptor }

var updateHitboxCollisionConfigCodec = codec.NewStruct[UpdateHitboxCollisionConfig]()

type UpdateCameraShake struct{}

var updateCameraShakeDescriptor = assetTableDescriptor("UpdateCameraShake", 77, false)

func (UpdateCameraShake) Descriptor() *Descriptor { return updateCameraShakeDescriptor }

var updateCameraShakeCodec = codec.NewStruct[UpdateCameraShake]()

type UpdateBlockGroups struct{}

var updateBlockGroupsDescriptor = assetTableDescriptor("UpdateBlockGroups", 78, false)

func (UpdateBlockGroups) Descriptor() *Descriptor { return updateBlockGroupsDescriptor }

var updateBlockGroupsCodec = codec.NewStruct[UpdateBlockGroups]()

type UpdateAudioCategories struct{}

var updateAudioCategoriesDescriptor = assetTableDescriptor("UpdateAudioCategories", 80, false)

func (UpdateAudioCategories) Descriptor() *Descriptor { return updateAudioCategoriesDescriptor }

var updateAudioCategoriesCodec = codec.NewStruct[UpdateAudioCategories]()

type UpdateEqualizerEffects struct{}

var updateEqualizerEffectsDescriptor = assetTableDescriptor("UpdateEqualizerEffects", 82, false)

func (UpdateEqualizerEffects) Descriptor() *Descriptor { return updateEqualizerEffectsDescriptor }

var updateEqualizerEffectsCodec = codec.NewStruct[UpdateEqualizerEffects]()

type UpdateFluids struct{}

var updateFluidsDescriptor = assetTableDescriptor("UpdateFluids", 83, false)

func (UpdateFluids) Descriptor() *Descriptor { return updateFluidsDescriptor }

var updateFluidsCodec = codec.NewStruct[UpdateFluids]()

// AssetBurstOrder is the fixed identifier sequence the server sends in
// response to RequestAssets, one init-type packet per asset table.
var AssetBurstOrder = []uint32{
	updateBlockTypesDescriptor.ID,
	updateBlockHitboxesDescriptor.ID,
	updateBlockSoundSetsDescriptor.ID,
	updateBlockParticleSetsDescriptor.ID,
	updateBlockBreakingDecalsDescriptor.ID,
	updateBlockSetsDescriptor.ID,
	updateEntityEffectsDescriptor.ID,
	updateFieldcraftCategoriesDescriptor.ID,
	updateEnvironmentsDescriptor.ID,
	updateAmbienceFXDescriptor.ID,
	updateFluidFXDescriptor.ID,
	updateInteractionsDescriptor.ID,
	trackOrUpdateObjectiveDescriptor.ID,
	untrackObjectiveDescriptor.ID,
	updateEntityStatTypesDescriptor.ID,
	updateEntityUiComponentsDescriptor.ID,
	updateHitboxCollisionConfigDescriptor.ID,
	updateCameraShakeDescriptor.ID,
	updateBlockGroupsDescriptor.ID,
	updateAudioCategoriesDescriptor.ID,
	updateEqualizerEffectsDescriptor.ID,
	updateFluidsDescriptor.ID,
}

// AssetBurstPackets is the zero-value packet sequence matching
// AssetBurstOrder, ready for a frame.Encoder to send directly without
// the caller needing an identifier-to-type lookup.
var AssetBurstPackets = []Packet{
	UpdateBlockTypes{},
	UpdateBlockHitboxes{},
	UpdateBlockSoundSets{},
	UpdateBlockParticleSets{},
	UpdateBlockBreakingDecals{},
	UpdateBlockSets{},
	UpdateEntityEffects{},
	UpdateFieldcraftCategories{},
	UpdateEnvironments{},
	UpdateAmbienceFX{},
	UpdateFluidFX{},
	UpdateInteractions{},
	TrackOrUpdateObjective{},
	UntrackObjective{},
	UpdateEntityStatTypes{},
	UpdateEntityUiComponents{},
	UpdateHitboxCollisionConfig{},
	UpdateCameraShake{},
	UpdateBlockGroups{},
	UpdateAudioCategories{},
	UpdateEqualizerEffects{},
	UpdateFluids{},
}

// RegisterAssets adds the representative ASSETS category subset to r.
func RegisterAssets(r *Registry) {
	Register[UpdateBlockTypes](r, updateBlockTypesDescriptor, updateBlockTypesCodec)
	Register[UpdateBlockHitboxes](r, updateBlockHitboxesDescriptor, updateBlockHitboxesCodec)
	Register[UpdateBlockSoundSets](r, updateBlockSoundSetsDescriptor, updateBlockSoundSetsCodec)
	Register[UpdateBlockParticleSets](r, updateBlockParticleSetsDescriptor, updateBlockParticleSetsCodec)
	Register[UpdateBlockBreakingDecals](r, updateBlockBreakingDecalsDescriptor, updateBlockBreakingDecalsCodec)
	Register[UpdateBlockSets](r, updateBlockSetsDescriptor, updateBlockSetsCodec)
	Register[UpdateEntityEffects](r, updateEntityEffectsDescriptor, updateEntityEffectsCodec)
	Register[UpdateFieldcraftCategories](r, updateFieldcraftCategoriesDescriptor, updateFieldcraftCategoriesCodec)
	Register[UpdateEnvironments](r, updateEnvironmentsDescriptor, updateEnvironmentsCodec)
	Register[UpdateAmbienceFX](r, updateAmbienceFXDescriptor, updateAmbienceFXCodec)
	Register[UpdateFluidFX](r, updateFluidFXDescriptor, updateFluidFXCodec)
	Register[UpdateInteractions](r, updateInteractionsDescriptor, updateInteractionsCodec)
	Register[TrackOrUpdateObjective](r, trackOrUpdateObjectiveDescriptor, trackOrUpdateObjectiveCodec)
	Register[UntrackObjective](r, untrackObjectiveDescriptor, untrackObjectiveCodec)
	Register[UpdateEntityStatTypes](r, updateEntityStatTypesDescriptor, updateEntityStatTypesCodec)
	Register[UpdateEntityUiComponents](r, updateEntityUiComponentsDescriptor, updateEntityUiComponentsCodec)
	Register[UpdateHitboxCollisionConfig](r, updateHitboxCollisionConfigDescriptor, updateHitboxCollisionConfigCodec)
	Register[UpdateCameraShake](r, updateCameraShakeDescriptor, updateCameraShakeCodec)
	Register[UpdateBlockGroups](r, updateBlockGroupsDescriptor, updateBlockGroupsCodec)
	Register[UpdateAudioCategories](r, updateAudioCategoriesDescriptor, updateAudioCategoriesCodec)
	Register[UpdateEqualizerEffects](r, updateEqualizerEffectsDescriptor, updateEqualizerEffectsCodec)
	Register[UpdateFluids](r, updateFluidsDescriptor, updateFluidsCodec)
}
