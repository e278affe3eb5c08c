package sqlinline

const QInsertGeneratedImage = `--sql 579413d7-15e1-4e7a-9d65-19fbe635b825
insert into generated_images (id, job_id, file_path, thumbnail_path, mime, width, height, image_index)
values ($1, $2, $3, $4, $5, $6, $7, $8);
`

const QSelectJobImages = `--sql 86863d7f-595f-42a2-a128-c71a7a56daad
select id, job_id, file_path, thumbnail_path, mime, width, height, image_index, created_at
from generated_images
where job_id = $1
order by image_index asc;
`
