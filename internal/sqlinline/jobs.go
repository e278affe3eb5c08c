package sqlinline

const QInsertJob = `--sql 27cfb9c7-b272-4abe-8526-a9598824f2a2
insert into generation_jobs (id, project_id, project_scene_id, status, total_count, completed_count)
values ($1, $2, $3, 'pending', $4, 0)
returning created_at, updated_at;
`

const QSelectJob = `--sql 2c9cb17d-3742-4a5e-be9b-76fdb7d6dd06
select id, project_id, project_scene_id, status, total_count, completed_count, error_message, created_at, updated_at
from generation_jobs
where id = $1;
`

const QSelectNextPending = `--sql 2cf6a8fc-649d-4a67-b880-4d220d63d5ad
select id, project_id, project_scene_id, status, total_count, completed_count, error_message, created_at, updated_at
from generation_jobs
where status = 'pending'
order by created_at asc
limit 1;
`

const QMarkJobRunning = `--sql 4c33adb9-9b08-459d-a53e-89c188b8d1d8
update generation_jobs
set status = 'running', updated_at = now()
where id = $1 and status = 'pending';
`

const QIncrementJobCompleted = `--sql af3f8019-0be5-47aa-98c3-33c13553349e
update generation_jobs
set completed_count = completed_count + 1, updated_at = now()
where id = $1 and status = 'running' and completed_count < total_count;
`

const QMarkJobCompleted = `--sql 4c4148a3-2da0-4018-8e8b-cc5369a16682
update generation_jobs
set status = 'completed', updated_at = now()
where id = $1 and status = 'running' and completed_count = total_count;
`

const QMarkJobFailed = `--sql b554eea8-9f4a-40e9-8188-969dacc8c103
update generation_jobs
set status = 'failed', error_message = $2, updated_at = now()
where id = $1 and status in ('pending', 'running');
`

const QMarkJobsCancelled = `--sql 8f560a7f-c78d-4fea-81b2-da5f2dcea5b6
update generation_jobs
set status = 'cancelled', updated_at = now()
where id = any($1) and status in ('pending', 'running');
`

const QRequeueRunningJobs = `--sql adb4b8b0-1d4a-4cfe-b1f8-1054a545b6cd
update generation_jobs
set status = 'pending', updated_at = now()
where status = 'running';
`

const QListActiveJobs = `--sql 3d55aad9-947b-426e-ae4f-bbfb3476c1e6
select id, project_id, project_scene_id, status, total_count, completed_count, error_message, created_at, updated_at
from generation_jobs
where status in ('pending', 'running')
  and (nullif($1::text, '') is null or project_id = nullif($1::text, '')::uuid)
order by created_at asc;
`

const QListProjectJobs = `--sql a9d7da81-1ac5-484c-bac3-79980656bbef
select id, project_id, project_scene_id, status, total_count, completed_count, error_message, created_at, updated_at
from generation_jobs
where project_id = $1
order by created_at desc;
`

const QCountPendingJobs = `--sql a259329f-1fdf-4bc3-99aa-985756d11011
select count(*)
from generation_jobs
where status = 'pending';
`
