package packets

import "github.com/hytale-oss/gameserver/internal/codec"

// Asset identifies one content asset by content hash and display name.
type Asset struct {
	Hash string
	Name string
}

var assetCodec = codec.NewStruct[Asset](
	codec.Field[Asset, string](codec.FixedString{N: 64}, "hash",
		func(v *Asset) string { return v.Hash },
		func(v *Asset, f string) { v.Hash = f }),
	codec.Field[Asset, string](codec.VarString{Max: 512}, "name",
		func(v *Asset) string { return v.Name },
		func(v *Asset, f string) { v.Name = f }),
)

// AssetPart is one chunk of a larger asset payload streamed across
// several frames; it has no standalone descriptor, only a shared codec
// used by whichever packet streams asset bytes.
type AssetPart struct {
	Part *[]byte
}

var assetPartCodec = codec.NewStruct[AssetPart](
	codec.Field[AssetPart, *[]byte](codec.VariableNullable[[]byte]{Inner: codec.VarBytes{Max: 4096000}}, "part",
		func(v *AssetPart) *[]byte { return v.Part },
		func(v *AssetPart, f *[]byte) { v.Part = f }),
)

// ClientFeature is one independently toggleable client-side gameplay
// feature.
type ClientFeature uint8

const (
	ClientFeatureSplitVelocity ClientFeature = iota
	ClientFeatureMantling
	ClientFeatureSprintForce
	ClientFeatureCrouchSlide
	ClientFeatureSafetyRoll
	ClientFeatureDisplayHealthBars
	ClientFeatureDisplayCombatText
)

var clientFeatureCodec = codec.Enum[ClientFeature]{VariantCount: 7}

// PlayerSkin is the full set of optional cosmetic layer selections for a
// player's appearance, each an asset identifier string.
type PlayerSkin struct {
	BodyCharacteristic *string
	Underwear          *string
	Face               *string
	Eyes               *string
	Ears               *string
	Mouth              *string
	FacialHair         *string
	Haircut            *string
	Eyebrows           *string
	Pants              *string
	Overpants          *string
	Undertop           *string
	Overtop            *string
	Shoes              *string
	HeadAccessory      *string
	FaceAccessory      *string
	EarAccessory       *string
	SkinFeature        *string
	Gloves             *string
	Cape               *string
}

func skinField(name string, get func(*PlayerSkin) *string, set func(*PlayerSkin, *string)) codec.Codec[PlayerSkin] {
	return codec.Field[PlayerSkin, *string](codec.VariableNullable[string]{Inner: codec.VarString{Max: 4096000}}, name, get, set)
}

var playerSkinCodec = codec.NewStruct[PlayerSkin](
	skinField("body_characteristic", func(v *PlayerSkin) *string { return v.BodyCharacteristic }, func(v *PlayerSkin, f *string) { v.BodyCharacteristic = f }),
	skinField("underwear", func(v *PlayerSkin) *string { return v.Underwear }, func(v *PlayerSkin, f *string) { v.Underwear = f }),
	skinField("face", func(v *PlayerSkin) *string { return v.Face }, func(v *PlayerSkin, f *string) { v.Face = f }),
	skinField("eyes", func(v *PlayerSkin) *string { return v.Eyes }, func(v *PlayerSkin, f *string) { v.Eyes = f }),
	skinField("ears", func(v *PlayerSkin) *string { return v.Ears }, func(v *PlayerSkin, f *string) { v.Ears = f }),
	skinField("mouth", func(v *PlayerSkin) *string { return v.Mouth }, func(v *PlayerSkin, f *string) { v.Mouth = f }),
	skinField("facial_hair", func(v *PlayerSkin) *string { return v.FacialHair }, func(v *PlayerSkin, f *string) { v.FacialHair = f }),
	skinField("haircut", func(v *PlayerSkin) *string { return v.Haircut }, func(v *PlayerSkin, f *string) { v.Haircut = f }),
	skinField("eyebrows", func(v *PlayerSkin) *string { return v.Eyebrows }, func(v *PlayerSkin, f *string) { v.Eyebrows = f }),
	skinField("pants", func(v *PlayerSkin) *string { return v.Pants }, func(v *PlayerSkin, f *string) { v.Pants = f }),
	skinField("overpants", func(v *PlayerSkin) *string { return v.Overpants }, func(v *PlayerSkin, f *string) { v.Overpants = f }),
	skinField("undertop", func(v *PlayerSkin) *string { return v.Undertop }, func(v *PlayerSkin, f *string) { v.Undertop = f }),
	skinField("overtop", func(v *PlayerSkin) *string { return v.Overtop }, func(v *PlayerSkin, f *string) { v.Overtop = f }),
	skinField("shoes", func(v *PlayerSkin) *string { return v.Shoes }, func(v *PlayerSkin, f *string) { v.Shoes = f }),
	skinField("head_accessory", func(v *PlayerSkin) *string { return v.HeadAccessory }, func(v *PlayerSkin, f *string) { v.HeadAccessory = f }),
	skinField("face_accessory", func(v *PlayerSkin) *string { return v.FaceAccessory }, func(v *PlayerSkin, f *string) { v.FaceAccessory = f }),
	skinField("ear_accessory", func(v *PlayerSkin) *string { return v.EarAccessory }, func(v *PlayerSkin, f *string) { v.EarAccessory = f }),
	skinField("skin_feature", func(v *PlayerSkin) *string { return v.SkinFeature }, func(v *PlayerSkin, f *string) { v.SkinFeature = f }),
	skinField("gloves", func(v *PlayerSkin) *string { return v.Gloves }, func(v *PlayerSkin, f *string) { v.Gloves = f }),
	skinField("cape", func(v *PlayerSkin) *string { return v.Cape }, func(v *PlayerSkin, f *string) { v.Cape = f }),
)

// AssetFinalize marks the end of one asset's init+part stream.
type AssetFinalize struct{}

var assetFinalizeDescriptor = &Descriptor{Name: "AssetFinalize", ID: 26, MaxSize: 0, Category: CategorySetup}

func (AssetFinalize) Descriptor() *Descriptor { return assetFinalizeDescriptor }

var assetFinalizeCodec = codec.NewStruct[AssetFinalize]()

// AssetInitialize announces the start of one asset's transfer and its
// total byte size.
type AssetInitialize struct {
	Asset Asset
	Size  uint32
}

var assetInitializeDescriptor = &Descriptor{Name: "AssetInitialize", ID: 24, MaxSize: 2121, Category: CategorySetup}

func (AssetInitialize) Descriptor() *Descriptor { return assetInitializeDescriptor }

var assetInitializeCodec = codec.NewStruct[AssetInitialize](
	codec.Field[AssetInitialize, Asset](assetCodec, "asset",
		func(v *AssetInitialize) Asset { return v.Asset },
		func(v *AssetInitialize, f Asset) { v.Asset = f }),
	codec.Field[AssetInitialize, uint32](codec.U32, "size",
		func(v *AssetInitialize) uint32 { return v.Size },
		func(v *AssetInitialize, f uint32) { v.Size = f }),
)

// PlayerOptions carries the client's optional cosmetic skin selection.
type PlayerOptions struct {
	Skin *PlayerSkin
}

var playerOptionsDescriptor = &Descriptor{Name: "PlayerOptions", ID: 33, MaxSize: 327680184, Category: CategorySetup}

func (PlayerOptions) Descriptor() *Descriptor { return playerOptionsDescriptor }

var playerOptionsCodec = codec.NewStruct[PlayerOptions](
	codec.Field[PlayerOptions, *PlayerSkin](codec.VariableNullable[PlayerSkin]{Inner: playerSkinCodec}, "skin",
		func(v *PlayerOptions) *PlayerSkin { return v.Skin },
		func(v *PlayerOptions, f *PlayerSkin) { v.Skin = f }),
)

// RemoveAssets tells the client to evict a set of assets from its cache.
type RemoveAssets struct {
	Assets *[]Asset
}

var removeAssetsDescriptor = &Descriptor{Name: "RemoveAssets", ID: 27, MaxSize: 1677721600, Category: CategorySetup}

func (RemoveAssets) Descriptor() *Descriptor { return removeAssetsDescriptor }

var removeAssetsCodec = codec.NewStruct[RemoveAssets](
	codec.Field[RemoveAssets, *[]Asset](codec.VariableNullable[[]Asset]{Inner: codec.VarArray[Asset]{Max: 4096000, Inner: assetCodec}}, "assets",
		func(v *RemoveAssets) *[]Asset { return v.Assets },
		func(v *RemoveAssets, f *[]Asset) { v.Assets = f }),
)

// RequestAssets is the client's request for the listed assets; the
// server answers with the fixed init-packet burst (see internal/session).
type RequestAssets struct {
	Assets *[]Asset
}

var requestAssetsDescriptor = &Descriptor{
	Name:         "RequestAssets",
	ID:           23,
	IsCompressed: true,
	MaxSize:      1677721600,
	Category:     CategorySetup,
}

func (RequestAssets) Descriptor() *Descriptor { return requestAssetsDescriptor }

var requestAssetsCodec = codec.NewStruct[RequestAssets](
	codec.Field[RequestAssets, *[]Asset](codec.VariableNullable[[]Asset]{Inner: codec.VarArray[Asset]{Max: 4096000, Inner: assetCodec}}, "assets",
		func(v *RequestAssets) *[]Asset { return v.Assets },
		func(v *RequestAssets, f *[]Asset) { v.Assets = f }),
)

// RequestCommonAssetsRebuild asks the server to recompute its shared
// (non-per-world) asset tables.
type RequestCommonAssetsRebuild struct{}

var requestCommonAssetsRebuildDescriptor = &Descriptor{Name: "RequestCommonAssetsRebuild", ID: 28, MaxSize: 0, Category: CategorySetup}

func (RequestCommonAssetsRebuild) Descriptor() *Descriptor { return requestCommonAssetsRebuildDescriptor }

var requestCommonAssetsRebuildCodec = codec.NewStruct[RequestCommonAssetsRebuild]()

// ServerTags is an arbitrary server-operator-defined key/value tag set
// surfaced to the client.
type ServerTags struct {
	Tags *[]codec.DictEntry[string, uint32]
}

var serverTagsDescriptor = &Descriptor{Name: "ServerTags", ID: 34, MaxSize: 1677721600, Category: CategorySetup}

func (ServerTags) Descriptor() *Descriptor { return serverTagsDescriptor }

var serverTagsCodec = codec.NewStruct[ServerTags](
	codec.Field[ServerTags, *[]codec.DictEntry[string, uint32]](
		codec.VariableNullable[[]codec.DictEntry[string, uint32]]{
			Inner: codec.VarDict[string, uint32]{Max: 4096000, KeyCodec: codec.VarString{Max: 4096000}, ValueCodec: codec.U32},
		}, "tags",
		func(v *ServerTags) *[]codec.DictEntry[string, uint32] { return v.Tags },
		func(v *ServerTags, f *[]codec.DictEntry[string, uint32]) { v.Tags = f }),
)

// SetTimeDilation scales the rate at which world time advances.
type SetTimeDilation struct {
	TimeDilation float32
}

var setTimeDilationDescriptor = &Descriptor{Name: "SetTimeDilation", ID: 30, MaxSize: 4, Category: CategorySetup}

func (SetTimeDilation) Descriptor() *Descriptor { return setTimeDilationDescriptor }

var setTimeDilationCodec = codec.NewStruct[SetTimeDilation](
	codec.Field[SetTimeDilation, float32](codec.F32, "time_dilation",
		func(v *SetTimeDilation) float32 { return v.TimeDilation },
		func(v *SetTimeDilation, f float32) { v.TimeDilation = f }),
)

// SetUpdateRate configures the target simulation tick rate.
type SetUpdateRate struct {
	UpdatesPerSecond uint32
}

var setUpdateRateDescriptor = &Descriptor{Name: "SetUpdateRate", ID: 29, MaxSize: 4, Category: CategorySetup}

func (SetUpdateRate) Descriptor() *Descriptor { return setUpdateRateDescriptor }

var setUpdateRateCodec = codec.NewStruct[SetUpdateRate](
	codec.Field[SetUpdateRate, uint32](codec.U32, "updates_per_second",
		func(v *SetUpdateRate) uint32 { return v.UpdatesPerSecond },
		func(v *SetUpdateRate, f uint32) { v.UpdatesPerSecond = f }),
)

// UpdateFeatures toggles the named client-side gameplay features.
type UpdateFeatures struct {
	Features *[]codec.DictEntry[ClientFeature, bool]
}

var updateFeaturesDescriptor = &Descriptor{Name: "UpdateFeatures", ID: 31, MaxSize: 8192006, Category: CategorySetup}

func (UpdateFeatures) Descriptor() *Descriptor { return updateFeaturesDescriptor }

var updateFeaturesCodec = codec.NewStruct[UpdateFeatures](
	codec.Field[UpdateFeatures, *[]codec.DictEntry[ClientFeature, bool]](
		codec.VariableNullable[[]codec.DictEntry[ClientFeature, bool]]{
			Inner: codec.VarDict[ClientFeature, bool]{Max: 4096000, KeyCodec: clientFeatureCodec, ValueCodec: codec.Bool},
		}, "features",
		func(v *UpdateFeatures) *[]codec.DictEntry[ClientFeature, bool] { return v.Features },
		func(v *UpdateFeatures, f *[]codec.DictEntry[ClientFeature, bool]) { v.Features = f }),
)

// ViewRadius sets the client's simulation/render distance, in chunks.
type ViewRadius struct {
	Value uint32
}

var viewRadiusDescriptor = &Descriptor{Name: "ViewRadius", ID: 32, MaxSize: 4, Category: CategorySetup}

func (ViewRadius) Descriptor() *Descriptor { return viewRadiusDescriptor }

var viewRadiusCodec = codec.NewStruct[ViewRadius](
	codec.Field[ViewRadius, uint32](codec.U32, "value",
		func(v *ViewRadius) uint32 { return v.Value },
		func(v *ViewRadius, f uint32) { v.Value = f }),
)

// WorldLoadProgress reports world-generation/load progress while the
// client waits in the Setup phase.
type WorldLoadProgress struct {
	Status                 *string
	PercentComplete        uint32
	PercentCompleteSubitem uint32
}

var worldLoadProgressDescriptor = &Descriptor{Name: "WorldLoadProgress", ID: 21, MaxSize: 16384014, Category: CategorySetup}

func (WorldLoadProgress) Descriptor() *Descriptor { return worldLoadProgressDescriptor }

var worldLoadProgressCodec = codec.NewStruct[WorldLoadProgress](
	codec.Field[WorldLoadProgress, *string](codec.VariableNullable[string]{Inner: codec.VarString{Max: 4096000}}, "status",
		func(v *WorldLoadProgress) *string { return v.Status },
		func(v *WorldLoadProgress, f *string) { v.Status = f }),
	codec.Field[WorldLoadProgress, uint32](codec.U32, "percent_complete",
		func(v *WorldLoadProgress) uint32 { return v.PercentComplete },
		func(v *WorldLoadProgress, f uint32) { v.PercentComplete = f }),
	codec.Field[WorldLoadProgress, uint32](codec.U32, "percent_complete_subitem",
		func(v *WorldLoadProgress) uint32 { return v.PercentCompleteSubitem },
		func(v *WorldLoadProgress, f uint32) { v.PercentCompleteSubitem = f }),
)

// WorldLoadFinished signals that the world is fully loaded and the
// connection may advance to Ready.
type WorldLoadFinished struct{}

var worldLoadFinishedDescriptor = &Descriptor{Name: "WorldLoadFinished", ID: 22, MaxSize: 0, Category: CategorySetup}

func (WorldLoadFinished) Descriptor() *Descriptor { return worldLoadFinishedDescriptor }

var worldLoadFinishedCodec = codec.NewStruct[WorldLoadFinished]()

// WorldSettings announces world geometry limits and the asset digests
// the client must have before it can request the asset catalog.
type WorldSettings struct {
	WorldHeight    uint32
	RequiredAssets *[]Asset
}

var worldSettingsDescriptor = &Descriptor{
	Name:         "WorldSettings",
	ID:           20,
	IsCompressed: true,
	MaxSize:      1677721600,
	Category:     CategorySetup,
}

func (WorldSettings) Descriptor() *Descriptor { return worldSettingsDescriptor }

var worldSettingsCodec = codec.NewStruct[WorldSettings](
	codec.Field[WorldSettings, uint32](codec.U32, "world_height",
		func(v *WorldSettings) uint32 { return v.WorldHeight },
		func(v *WorldSettings, f uint32) { v.WorldHeight = f }),
	codec.Field[WorldSettings, *[]Asset](codec.VariableNullable[[]Asset]{Inner: codec.VarArray[Asset]{Max: 4096000, Inner: assetCodec}}, "required_assets",
		func(v *WorldSettings) *[]Asset { return v.RequiredAssets },
		func(v *WorldSettings, f *[]Asset) { v.RequiredAssets = f }),
)

// RegisterSetup adds the SETUP category's packet types to r.
func RegisterSetup(r *Registry) {
	Register[AssetFinalize](r, assetFinalizeDescriptor, assetFinalizeCodec)
	Register[AssetInitialize](r, assetInitializeDescriptor, assetInitializeCodec)
	Register[PlayerOptions](r, playerOptionsDescriptor, playerOptionsCodec)
	Register[RemoveAssets](r, removeAssetsDescriptor, removeAssetsCodec)
	Register[RequestAssets](r, requestAssetsDescriptor, requestAssetsCodec)
	Register[RequestCommonAssetsRebuild](r, requestCommonAssetsRebuildDescriptor, requestCommonAssetsRebuildCodec)
	Register[ServerTags](r, serverTagsDescriptor, serverTagsCodec)
	Register[SetTimeDilation](r, setTimeDilationDescriptor, setTimeDilationCodec)
	Register[SetUpdateRate](r, setUpdateRateDescriptor, setUpdateRateCodec)
	Register[UpdateFeatures](r, updateFeaturesDescriptor, updateFeaturesCodec)
	Register[ViewRadius](r, viewRadiusDescriptor, viewRadiusCodec)
	Register[WorldLoadProgress](r, worldLoadProgressDescriptor, worldLoadProgressCodec)
	Register[WorldLoadFinished](r, worldLoadFinishedDescriptor, worldLoadFinishedCodec)
	Register[WorldSettings](r, worldSettingsDescriptor, worldSettingsCodec)
}
