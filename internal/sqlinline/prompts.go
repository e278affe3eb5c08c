package sqlinline

const QSelectProject = `--sql 1f80bfb9-dc16-40f8-95fa-24f27f7d2c8a
select id, name, general_template, negative_template
from projects
where id = $1;
`

const QSelectProjectCharacters = `--sql c34a11ee-d26f-45d5-9e86-f63898bb5432
select id, project_id, name, prompt_template, negative_template, enabled, position
from characters
where project_id = $1
order by position asc, name asc;
`

const QSelectScene = `--sql ca860fc8-3e9b-4e8c-8fac-56800a7c80cd
select id, project_id, name, image_count, placeholder_values
from project_scenes
where id = $1;
`

const QSelectProjectScenes = `--sql ee914259-0f6e-4376-bcb2-6353a1d430f4
select id, project_id, name, image_count, placeholder_values
from project_scenes
where project_id = $1
  and (cardinality($2::uuid[]) = 0 or id = any($2))
order by name asc;
`

const QSelectSceneCharacterValues = `--sql 7b0b678e-e674-40ff-ad89-279d5f3448df
select character_id, placeholder_values
from scene_character_values
where project_scene_id = $1;
`
