package rules

import (
	"github.com/rmmh/worldshift/go/chunk"
	"github.com/rmmh/worldshift/go/translate"
)

// JavaLatest is the newest data version the renames below know about.
// Universal names are Java names as of this version.
const JavaLatest = 4541

type rename struct{ from, to string }

// A migration is the set of block renames a data version introduced.
// Renames within one migration apply simultaneously.
type migration struct {
	version int
	renames []rename
}

// These renames are sourced from minecraft/datafixer/Schemas.java, which
// appears to be the single best source of truth for data-level format
// differences. Names are without the minecraft: namespace.
var migrations = []migration{
	{1474, []rename{
		{"purple_shulker_box", "shulker_box"},
	}},
	{1475, []rename{
		{"flowing_water", "water"},
		{"flowing_lava", "lava"},
	}},
	{1480, []rename{
		{"blue_coral", "tube_coral_block"},
		{"pink_coral", "brain_coral_block"},
		{"purple_coral", "bubble_coral_block"},
		{"red_coral", "fire_coral_block"},
		{"yellow_coral", "horn_coral_block"},
		{"blue_coral_plant", "tube_coral"},
		{"pink_coral_plant", "brain_coral"},
		{"purple_coral_plant", "bubble_coral"},
		{"red_coral_plant", "fire_coral"},
		{"yellow_coral_plant", "horn_coral"},
		{"blue_coral_fan", "tube_coral_fan"},
		{"pink_coral_fan", "brain_coral_fan"},
		{"purple_coral_fan", "bubble_coral_fan"},
		{"red_coral_fan", "fire_coral_fan"},
		{"yellow_coral_fan", "horn_coral_fan"},
		{"blue_dead_coral", "dead_tube_coral"},
		{"pink_dead_coral", "dead_brain_coral"},
		{"purple_dead_coral", "dead_bubble_coral"},
		{"red_dead_coral", "dead_fire_coral"},
		{"yellow_dead_coral", "dead_horn_coral"},
	}},
	{1484, []rename{
		{"sea_grass", "seagrass"},
		{"tall_sea_grass", "tall_seagrass"},
	}},
	{1487, []rename{
		{"prismarine_bricks_slab", "prismarine_brick_slab"},
		{"prismarine_bricks_stairs", "prismarine_brick_stairs"},
	}},
	{1488, []rename{
		{"kelp_top", "kelp"},
		{"kelp", "kelp_plant"},
	}},
	{1490, []rename{
		{"melon_block", "melon"},
	}},
	{1510, []rename{
		{"portal", "nether_portal"},
		{"oak_bark", "oak_wood"},
		{"spruce_bark", "spruce_wood"},
		{"birch_bark", "birch_wood"},
		{"jungle_bark", "jungle_wood"},
		{"acacia_bark", "acacia_wood"},
		{"dark_oak_bark", "dark_oak_wood"},
		{"stripped_oak_bark", "stripped_oak_wood"},
		{"stripped_spruce_bark", "stripped_spruce_wood"},
		{"stripped_birch_bark", "stripped_birch_wood"},
		{"stripped_jungle_bark", "stripped_jungle_wood"},
		{"stripped_acacia_bark", "stripped_acacia_wood"},
		{"stripped_dark_oak_bark", "stripped_dark_oak_wood"},
		{"mob_spawner", "spawner"},
	}},
	{1515, []rename{
		{"tube_coral_fan", "tube_coral_wall_fan"},
		{"brain_coral_fan", "brain_coral_wall_fan"},
		{"bubble_coral_fan", "bubble_coral_wall_fan"},
		{"fire_coral_fan", "fire_coral_wall_fan"},
		{"horn_coral_fan", "horn_coral_wall_fan"},
	}},
	{1802, []rename{
		{"stone_slab", "smooth_stone_slab"},
		{"sign", "oak_sign"},
		{"wall_sign", "oak_wall_sign"},
	}},
	{2209, []rename{
		{"bee_hive", "beehive"},
	}},
	{2508, []rename{
		{"warped_fungi", "warped_fungus"},
		{"crimson_fungi", "crimson_fungus"},
	}},
	// TODO: figure out 2527's BitStorageAlignFix
	{2528, []rename{
		{"soul_fire_torch", "soul_torch"},
		{"soul_fire_wall_torch", "soul_wall_torch"},
		{"soul_fire_lantern", "soul_lantern"},
	}},
	// Technically this should be done based on the contents.
	{2679, []rename{
		{"cauldron", "water_cauldron"},
	}},
	{2680, []rename{
		{"grass_path", "dirt_path"},
	}},
	{2690, []rename{
		{"weathered_copper_block", "oxidized_copper_block"},
		{"semi_weathered_copper_block", "weathered_copper_block"},
		{"lightly_weathered_copper_block", "exposed_copper_block"},
		{"weathered_cut_copper", "oxidized_cut_copper"},
		{"semi_weathered_cut_copper", "weathered_cut_copper"},
		{"lightly_weathered_cut_copper", "exposed_cut_copper"},
		{"weathered_cut_copper_stairs", "oxidized_cut_copper_stairs"},
		{"semi_weathered_cut_copper_stairs", "weathered_cut_copper_stairs"},
		{"lightly_weathered_cut_copper_stairs", "exposed_cut_copper_stairs"},
		{"weathered_cut_copper_slab", "oxidized_cut_copper_slab"},
		{"semi_weathered_cut_copper_slab", "weathered_cut_copper_slab"},
		{"lightly_weathered_cut_copper_slab", "exposed_cut_copper_slab"},
		{"waxed_semi_weathered_copper", "waxed_weathered_copper"},
		{"waxed_lightly_weathered_copper", "waxed_exposed_copper"},
		{"waxed_semi_weathered_cut_copper", "waxed_weathered_cut_copper"},
		{"waxed_lightly_weathered_cut_copper", "waxed_exposed_cut_copper"},
		{"waxed_semi_weathered_cut_copper_stairs", "waxed_weathered_cut_copper_stairs"},
		{"waxed_lightly_weathered_cut_copper_stairs", "waxed_exposed_cut_copper_stairs"},
		{"waxed_semi_weathered_cut_copper_slab", "waxed_weathered_cut_copper_slab"},
		{"waxed_lightly_weathered_cut_copper_slab", "waxed_exposed_cut_copper_slab"},
	}},
	{2691, []rename{
		{"waxed_copper", "waxed_copper_block"},
		{"oxidized_copper_block", "oxidized_copper"},
		{"weathered_copper_block", "weathered_copper"},
		{"exposed_copper_block", "exposed_copper"},
	}},
	{2696, []rename{
		{"grimstone", "deepslate"},
		{"grimstone_slab", "cobbled_deepslate_slab"},
		{"grimstone_stairs", "cobbled_deepslate_stairs"},
		{"grimstone_wall", "cobbled_deepslate_wall"},
		{"polished_grimstone", "polished_deepslate"},
		{"polished_grimstone_slab", "polished_deepslate_slab"},
		{"polished_grimstone_stairs", "polished_deepslate_stairs"},
		{"polished_grimstone_wall", "polished_deepslate_wall"},
		{"grimstone_tiles", "deepslate_tiles"},
		{"grimstone_tile_slab", "deepslate_tile_slab"},
		{"grimstone_tile_stairs", "deepslate_tile_stairs"},
		{"grimstone_tile_wall", "deepslate_tile_wall"},
		{"grimstone_bricks", "deepslate_bricks"},
		{"grimstone_brick_slab", "deepslate_brick_slab"},
		{"grimstone_brick_stairs", "deepslate_brick_stairs"},
		{"grimstone_brick_wall", "deepslate_brick_wall"},
		{"chiseled_grimstone", "chiseled_deepslate"},
	}},
	{2700, []rename{
		{"cave_vines_head", "cave_vines"},
		{"cave_vines_body", "cave_vines_plant"},
	}},
	{2717, []rename{
		{"azalea_leaves_flowers", "flowering_azalea_leaves"},
	}},
	{3692, []rename{
		{"grass", "short_grass"},
	}},
	{4541, []rename{
		{"chain", "iron_chain"},
	}},
}

// migrateName walks name forward from data version vfrom to vto, or
// backward through the inverse renames when vto < vfrom.
func migrateName(name string, vfrom, vto int) string {
	if vfrom < vto {
		for _, m := range migrations {
			if vfrom < m.version && vto >= m.version {
				name = m.apply(name, false)
			}
		}
		return name
	}
	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		if vto < m.version && vfrom >= m.version {
			name = m.apply(name, true)
		}
	}
	return name
}

func (m migration) apply(name string, inverse bool) string {
	for _, r := range m.renames {
		from, to := r.from, r.to
		if inverse {
			from, to = to, from
		}
		if name == from {
			return to
		}
	}
	return name
}

// java is the rule set for one Java data version: the migration renames
// between it and JavaLatest plus the namespace change. Properties, biomes
// and block entities carry over unchanged.
type java struct {
	dataVersion int
}

// Java returns the rule set for a Java data version.
func Java(dataVersion int) translate.Version {
	return java{dataVersion}
}

func (j java) Block(dir translate.Direction, b chunk.Block, _ translate.Lookup) (chunk.Object, *chunk.BlockEntity, bool, error) {
	out := b
	out.Extra = nil
	switch {
	case dir == translate.ToUniversal && b.Namespace == "minecraft":
		out.Namespace = Universal
		out.BaseName = migrateName(b.BaseName, j.dataVersion, JavaLatest)
	case dir == translate.FromUniversal && b.Namespace == Universal:
		out.Namespace = "minecraft"
		out.BaseName = migrateName(b.BaseName, JavaLatest, j.dataVersion)
	}
	return chunk.BlockObject(out), nil, false, nil
}

func (java) Biome(_ translate.Direction, code int32) int32 { return code }

func (java) BlockEntityAliases() (map[string]string, map[string]string) { return nil, nil }
